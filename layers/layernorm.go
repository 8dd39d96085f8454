package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// LayerNorm normalizes each input row over its last dimension and
// applies a learned per-feature scale and shift.
type LayerNorm struct {
	gamma    *Parameter
	beta     *Parameter
	features int
	eps      float32
}

// NewLayerNorm creates a layer normalization over the given feature
// width with epsilon 1e-5.
func NewLayerNorm(features int, b tensor.Backend) *LayerNorm {
	return NewLayerNormEps(features, 1e-5, b)
}

// NewLayerNormEps creates a layer normalization with an explicit
// epsilon.
func NewLayerNormEps(features int, eps float64, b tensor.Backend) *LayerNorm {
	if features <= 0 {
		panic(fmt.Sprintf("layers: NewLayerNorm: invalid feature count %d", features))
	}
	shape := tensor.Shape{features}
	return &LayerNorm{
		gamma:    NewParameter("gamma", tensor.Ones(shape, b)),
		beta:     NewParameter("beta", tensor.Zeros(shape, b)),
		features: features,
		eps:      float32(eps),
	}
}

func (ln *LayerNorm) Forward(x *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	if shape[len(shape)-1] != ln.features {
		panic(fmt.Sprintf("LayerNorm.Forward: expected last dimension %d, got shape %v", ln.features, shape))
	}
	mean := x.MeanDim(-1, true)
	centered := x.Sub(mean)
	variance := centered.Mul(centered).MeanDim(-1, true)
	inv := variance.AddScalar(ln.eps).Rsqrt()
	return centered.Mul(inv).Mul(ln.gamma.Tensor()).Add(ln.beta.Tensor())
}

// Parameters returns the scale and shift parameters.
func (ln *LayerNorm) Parameters() []*Parameter {
	return []*Parameter{ln.gamma, ln.beta}
}

// StateDict exports the scale and shift parameters.
func (ln *LayerNorm) StateDict() map[string]*tensor.Tensor {
	return map[string]*tensor.Tensor{
		"gamma": ln.gamma.Tensor(),
		"beta":  ln.beta.Tensor(),
	}
}

// LoadStateDict restores the scale and shift parameters.
func (ln *LayerNorm) LoadStateDict(sd map[string]*tensor.Tensor) error {
	for _, p := range ln.Parameters() {
		t, ok := sd[p.Name()]
		if !ok {
			return fmt.Errorf("layernorm: missing key %q", p.Name())
		}
		if err := p.Set(t); err != nil {
			return fmt.Errorf("layernorm: %w", err)
		}
	}
	return nil
}
