package layers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-perriard/fenwicks/backend/cpu"
	"github.com/simon-perriard/fenwicks/tensor"
)

func TestLayerNormNormalizesRows(t *testing.T) {
	b := cpu.New()
	ln := NewLayerNorm(4, b)

	x := tensor.New([]float32{1, 2, 3, 4, -10, 0, 10, 20}, tensor.Shape{2, 4}, b)
	y := ln.Forward(x)

	for r := 0; r < 2; r++ {
		row := y.Data()[r*4 : (r+1)*4]
		var sum, sq float32
		for _, v := range row {
			sum += v
			sq += v * v
		}
		mean := sum / 4
		if mean > 1e-5 || mean < -1e-5 {
			t.Errorf("row %d: mean %v, want ~0", r, mean)
		}
		variance := sq/4 - mean*mean
		if variance < 0.99 || variance > 1.01 {
			t.Errorf("row %d: variance %v, want ~1", r, variance)
		}
	}
}

func TestLayerNormScaleShift(t *testing.T) {
	b := cpu.New()
	ln := NewLayerNormEps(4, 1e-12, b)
	require.NoError(t, ln.LoadStateDict(map[string]*tensor.Tensor{
		"gamma": tensor.Full(tensor.Shape{4}, 2, b),
		"beta":  tensor.Full(tensor.Shape{4}, 1, b),
	}))

	x := tensor.New([]float32{1, 2, 3, 4}, tensor.Shape{1, 4}, b)
	y := ln.Forward(x)

	floatsNear(t, []float32{-1.6833, 0.10557, 1.8944, 3.6833}, y.Data(), 1e-3)
}

func TestLayerNormRejectsWrongWidth(t *testing.T) {
	b := cpu.New()
	ln := NewLayerNorm(4, b)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on feature width mismatch")
		}
	}()
	ln.Forward(tensor.Zeros(tensor.Shape{2, 5}, b))
}

func TestBatchNormInference(t *testing.T) {
	b := cpu.New()
	bn := NewBatchNorm(2, b)
	require.NoError(t, bn.LoadStateDict(map[string]*tensor.Tensor{
		"gamma":        tensor.New([]float32{1, 2}, tensor.Shape{2}, b),
		"beta":         tensor.New([]float32{0, 1}, tensor.Shape{2}, b),
		"running_mean": tensor.New([]float32{1, -1}, tensor.Shape{2}, b),
		"running_var":  tensor.New([]float32{4, 0.25}, tensor.Shape{2}, b),
	}))

	x := tensor.New([]float32{3, 0, -1, -2}, tensor.Shape{2, 2}, b)
	y := bn.Forward(x)

	floatsNear(t, []float32{0.99988, 4.99202, -0.99988, -2.99202}, y.Data(), 1e-3)
}

func TestBatchNormTraining(t *testing.T) {
	b := cpu.New()
	bn := NewBatchNorm(2, b)
	bn.SetTraining(true)

	x := tensor.New([]float32{1, 3, 3, 5}, tensor.Shape{2, 2}, b)
	y := bn.Forward(x)

	// Batch mean [2, 4], batch variance [1, 1].
	floatsNear(t, []float32{-1, -1, 1, 1}, y.Data(), 1e-2)
	floatsNear(t, []float32{0.02, 0.04}, bn.runningMean.Data(), 1e-6)
	floatsNear(t, []float32{1, 1}, bn.runningVar.Data(), 1e-6)
}

func TestBatchNormRank4(t *testing.T) {
	b := cpu.New()
	bn := NewBatchNorm(2, b)
	bn.SetTraining(true)

	// Channel 0 is constant; channel 1 has mean 1 and variance 1.
	x := tensor.New([]float32{1, 1, 1, 1, 0, 2, 0, 2}, tensor.Shape{1, 2, 2, 2}, b)
	y := bn.Forward(x)

	floatsNear(t, []float32{0, 0, 0, 0}, y.Data()[:4], 1e-5)
	floatsNear(t, []float32{-0.9995, 0.9995, -0.9995, 0.9995}, y.Data()[4:], 1e-3)
}

func TestBatchNormRejectsRank3(t *testing.T) {
	b := cpu.New()
	bn := NewBatchNorm(2, b)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on rank 3 input")
		}
	}()
	bn.Forward(tensor.Zeros(tensor.Shape{2, 2, 2}, b))
}
