package layers

import "github.com/simon-perriard/fenwicks/tensor"

// Scaling multiplies its input by a fixed scalar. Classifier heads use
// it to temper logits before the loss.
type Scaling struct {
	factor float32
}

// NewScaling creates a scaling layer with the given factor.
func NewScaling(factor float64) *Scaling {
	return &Scaling{factor: float32(factor)}
}

func (s *Scaling) Forward(x *tensor.Tensor) *tensor.Tensor {
	return x.MulScalar(s.factor)
}

func (s *Scaling) Parameters() []*Parameter { return nil }
