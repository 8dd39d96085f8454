package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// BatchNormConfig configures a batch normalization layer.
type BatchNormConfig struct {
	Features int
	// Momentum weights the previous running statistics in the
	// exponential moving average. Defaults to 0.99.
	Momentum float64
	// Epsilon stabilizes the variance denominator. Defaults to 1e-3.
	Epsilon float64
}

// BatchNorm normalizes activations per feature using batch statistics
// during training and running statistics during inference. It accepts
// [batch, features] inputs and [batch, channels, height, width]
// inputs, normalizing over the second dimension in both cases.
type BatchNorm struct {
	gamma       *Parameter
	beta        *Parameter
	runningMean *tensor.Tensor
	runningVar  *tensor.Tensor
	features    int
	momentum    float32
	eps         float32
	training    bool
}

// NewBatchNorm creates a batch normalization layer with the default
// momentum and epsilon.
func NewBatchNorm(features int, b tensor.Backend) *BatchNorm {
	return NewBatchNormWith(BatchNormConfig{Features: features}, b)
}

// NewBatchNormWith creates a batch normalization layer from a config.
func NewBatchNormWith(cfg BatchNormConfig, b tensor.Backend) *BatchNorm {
	if cfg.Features <= 0 {
		panic(fmt.Sprintf("layers: NewBatchNorm: invalid feature count %d", cfg.Features))
	}
	momentum := cfg.Momentum
	if momentum == 0 {
		momentum = 0.99
	}
	eps := cfg.Epsilon
	if eps == 0 {
		eps = 1e-3
	}
	shape := tensor.Shape{cfg.Features}
	return &BatchNorm{
		gamma:       NewParameter("gamma", tensor.Ones(shape, b)),
		beta:        NewParameter("beta", tensor.Zeros(shape, b)),
		runningMean: tensor.Zeros(shape, b),
		runningVar:  tensor.Ones(shape, b),
		features:    cfg.Features,
		momentum:    float32(momentum),
		eps:         float32(eps),
	}
}

// SetTraining switches between batch and running statistics.
func (bn *BatchNorm) SetTraining(training bool) { bn.training = training }

func (bn *BatchNorm) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() != 2 && x.Rank() != 4 {
		panic(fmt.Sprintf("BatchNorm.Forward: expected rank 2 or 4 input, got shape %v", x.Shape()))
	}
	if x.Shape()[1] != bn.features {
		panic(fmt.Sprintf("BatchNorm.Forward: expected %d features, got shape %v", bn.features, x.Shape()))
	}

	var mean, variance *tensor.Tensor
	if bn.training {
		mean = featureMean(x)
		sq := featureMean(x.Mul(x))
		variance = sq.Sub(mean.Mul(mean))
		bn.updateRunning(bn.runningMean, mean)
		bn.updateRunning(bn.runningVar, variance)
	} else {
		mean = bn.runningMean
		variance = bn.runningVar
	}

	bcast := tensor.Shape{1, bn.features}
	if x.Rank() == 4 {
		bcast = tensor.Shape{1, bn.features, 1, 1}
	}
	std := variance.AddScalar(bn.eps).Sqrt()
	y := x.Sub(mean.Reshape(bcast...)).Div(std.Reshape(bcast...))
	return y.Mul(bn.gamma.Tensor().Reshape(bcast...)).Add(bn.beta.Tensor().Reshape(bcast...))
}

// featureMean averages over every dimension except the feature
// dimension, returning a [features] tensor.
func featureMean(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() == 4 {
		return x.MeanDim(3, false).MeanDim(2, false).MeanDim(0, false)
	}
	return x.MeanDim(0, false)
}

func (bn *BatchNorm) updateRunning(running, batch *tensor.Tensor) {
	rd := running.Data()
	bd := batch.Data()
	for i := range rd {
		rd[i] = bn.momentum*rd[i] + (1-bn.momentum)*bd[i]
	}
}

// Parameters returns the scale and shift parameters. Running
// statistics are buffers, not parameters, and travel through the
// state dict instead.
func (bn *BatchNorm) Parameters() []*Parameter {
	return []*Parameter{bn.gamma, bn.beta}
}

// StateDict exports the parameters and running statistics.
func (bn *BatchNorm) StateDict() map[string]*tensor.Tensor {
	return map[string]*tensor.Tensor{
		"gamma":        bn.gamma.Tensor(),
		"beta":         bn.beta.Tensor(),
		"running_mean": bn.runningMean,
		"running_var":  bn.runningVar,
	}
}

// LoadStateDict restores the parameters and running statistics.
func (bn *BatchNorm) LoadStateDict(sd map[string]*tensor.Tensor) error {
	for _, p := range bn.Parameters() {
		t, ok := sd[p.Name()]
		if !ok {
			return fmt.Errorf("batchnorm: missing key %q", p.Name())
		}
		if err := p.Set(t); err != nil {
			return fmt.Errorf("batchnorm: %w", err)
		}
	}
	for name, buf := range map[string]*tensor.Tensor{
		"running_mean": bn.runningMean,
		"running_var":  bn.runningVar,
	} {
		t, ok := sd[name]
		if !ok {
			return fmt.Errorf("batchnorm: missing key %q", name)
		}
		if !buf.Shape().Equal(t.Shape()) {
			return fmt.Errorf("batchnorm: buffer %s: shape mismatch: want %v, got %v", name, buf.Shape(), t.Shape())
		}
		copy(buf.Data(), t.Data())
	}
	return nil
}
