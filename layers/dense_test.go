package layers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-perriard/fenwicks/backend/cpu"
	"github.com/simon-perriard/fenwicks/tensor"
)

func floatsNear(t *testing.T, want, got []float32, tol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("length mismatch: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(want[i])-float64(got[i])) > tol {
			t.Fatalf("element %d: want %v, got %v (full: want %v, got %v)", i, want[i], got[i], want, got)
		}
	}
}

func TestDenseForward(t *testing.T) {
	b := cpu.New()
	d := NewDense(3, 2, b)
	err := d.LoadStateDict(map[string]*tensor.Tensor{
		"weight": tensor.New([]float32{1, 0, -1, 2, 1, 0}, tensor.Shape{2, 3}, b),
		"bias":   tensor.New([]float32{0.5, -0.5}, tensor.Shape{2}, b),
	})
	require.NoError(t, err)

	x := tensor.New([]float32{1, 2, 3, 0, 1, 0}, tensor.Shape{2, 3}, b)
	y := d.Forward(x)

	require.Equal(t, tensor.Shape{2, 2}, y.Shape())
	floatsNear(t, []float32{-1.5, 3.5, 0.5, 0.5}, y.Data(), 1e-6)
}

func TestDenseNoBias(t *testing.T) {
	b := cpu.New()
	d := NewDenseWith(DenseConfig{In: 2, Out: 2, NoBias: true}, b)

	require.Nil(t, d.Bias())
	require.Len(t, d.Parameters(), 1)

	err := d.LoadStateDict(map[string]*tensor.Tensor{
		"weight": tensor.New([]float32{2, 0, 0, 3}, tensor.Shape{2, 2}, b),
	})
	require.NoError(t, err)

	y := d.Forward(tensor.New([]float32{1, 1}, tensor.Shape{1, 2}, b))
	floatsNear(t, []float32{2, 3}, y.Data(), 1e-6)
}

func TestDenseShapePanic(t *testing.T) {
	b := cpu.New()
	d := NewDense(3, 2, b)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on input width mismatch")
		}
	}()
	d.Forward(tensor.Zeros(tensor.Shape{2, 4}, b))
}

func TestDenseLoadStateDictRejectsBadShape(t *testing.T) {
	b := cpu.New()
	d := NewDense(3, 2, b)
	err := d.LoadStateDict(map[string]*tensor.Tensor{
		"weight": tensor.Zeros(tensor.Shape{3, 2}, b),
		"bias":   tensor.Zeros(tensor.Shape{2}, b),
	})
	require.Error(t, err)
}

func TestDenseStateDictRoundTrip(t *testing.T) {
	b := cpu.New()
	src := NewDense(4, 3, b)
	dst := NewDense(4, 3, b)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	x := tensor.Rand(tensor.Shape{2, 4}, b)
	floatsNear(t, src.Forward(x).Data(), dst.Forward(x).Data(), 0)
}
