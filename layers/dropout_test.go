package layers

import (
	"testing"

	"github.com/simon-perriard/fenwicks/backend/cpu"
	"github.com/simon-perriard/fenwicks/tensor"
)

func TestDropoutInferenceIsIdentity(t *testing.T) {
	b := cpu.New()
	d := NewDropout(0.5)

	x := tensor.Rand(tensor.Shape{4, 4}, b)
	if got := d.Forward(x); got != x {
		t.Fatal("expected the input tensor back outside training")
	}
}

func TestDropoutTraining(t *testing.T) {
	b := cpu.New()
	d := NewDropout(0.5)
	d.SetTraining(true)

	x := tensor.Ones(tensor.Shape{100, 100}, b)
	y := d.Forward(x)

	zeros := 0
	for _, v := range y.Data() {
		switch v {
		case 0:
			zeros++
		case 2:
			// Survivors are scaled by 1/(1-rate).
		default:
			t.Fatalf("unexpected value %v", v)
		}
	}
	if zeros < 4000 || zeros > 6000 {
		t.Fatalf("dropped %d of 10000 elements, want about half", zeros)
	}
}

func TestDropoutZeroRate(t *testing.T) {
	b := cpu.New()
	d := NewDropout(0)
	d.SetTraining(true)

	x := tensor.Rand(tensor.Shape{3, 3}, b)
	if got := d.Forward(x); got != x {
		t.Fatal("expected the input tensor back at rate 0")
	}
}

func TestDropoutRejectsBadRate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on rate 1")
		}
	}()
	NewDropout(1)
}
