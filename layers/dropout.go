package layers

import (
	"fmt"
	"math/rand"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Dropout randomly zeroes elements during training with the configured
// rate, scaling the survivors by 1/(1-rate) so activations keep their
// expected magnitude. Outside training it is the identity.
type Dropout struct {
	rate     float64
	training bool
}

// NewDropout creates a dropout layer. The rate is the probability of
// zeroing an element and must lie in [0, 1).
func NewDropout(rate float64) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("layers: NewDropout: rate %v outside [0, 1)", rate))
	}
	return &Dropout{rate: rate}
}

// Rate returns the configured drop probability.
func (d *Dropout) Rate() float64 { return d.rate }

// SetTraining toggles dropout on or off.
func (d *Dropout) SetTraining(training bool) { d.training = training }

func (d *Dropout) Forward(x *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.rate == 0 {
		return x
	}
	scale := float32(1 / (1 - d.rate))
	src := x.Data()
	data := make([]float32, len(src))
	for i, v := range src {
		if rand.Float64() >= d.rate {
			data[i] = v * scale
		}
	}
	return tensor.New(data, x.Shape().Clone(), x.Backend())
}

func (d *Dropout) Parameters() []*Parameter { return nil }
