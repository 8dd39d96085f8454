package layers

import (
	"math"

	"github.com/simon-perriard/fenwicks/tensor"
)

// ReLU is the rectified linear activation max(0, x).
type ReLU struct{}

// NewReLU creates a ReLU activation layer.
func NewReLU() *ReLU { return &ReLU{} }

func (r *ReLU) Forward(x *tensor.Tensor) *tensor.Tensor { return x.ReLU() }

func (r *ReLU) Parameters() []*Parameter { return nil }

const invSqrt2 float32 = 1 / math.Sqrt2

// GELU is the Gaussian error linear unit in its exact form,
// 0.5 * x * (1 + erf(x / sqrt(2))).
type GELU struct{}

// NewGELU creates a GELU activation layer.
func NewGELU() *GELU { return &GELU{} }

func (g *GELU) Forward(x *tensor.Tensor) *tensor.Tensor {
	return x.MulScalar(invSqrt2).Erf().AddScalar(1).Mul(x).MulScalar(0.5)
}

func (g *GELU) Parameters() []*Parameter { return nil }

// Tanh is the hyperbolic tangent activation.
type Tanh struct{}

// NewTanh creates a tanh activation layer.
func NewTanh() *Tanh { return &Tanh{} }

func (t *Tanh) Forward(x *tensor.Tensor) *tensor.Tensor { return x.Tanh() }

func (t *Tanh) Parameters() []*Parameter { return nil }
