package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Flatten collapses every dimension after the first, turning
// [batch, ...] inputs into [batch, features].
type Flatten struct{}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten { return &Flatten{} }

func (f *Flatten) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() < 2 {
		panic(fmt.Sprintf("Flatten.Forward: expected rank >= 2 input, got shape %v", x.Shape()))
	}
	batch := x.Shape()[0]
	return x.Reshape(batch, x.NumElements()/batch)
}

func (f *Flatten) Parameters() []*Parameter { return nil }
