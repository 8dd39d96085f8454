package layers

import (
	"math"
	"math/rand"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Initializer fills a freshly allocated tensor of the given shape.
type Initializer func(shape tensor.Shape, b tensor.Backend) *tensor.Tensor

// fans computes the fan-in and fan-out of a weight shape. Dense
// weights are [out, in]; convolution kernels are [out, in, kh, kw],
// where the receptive field multiplies both fans.
func fans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	}
	receptive := 1
	for _, s := range shape[2:] {
		receptive *= s
	}
	return shape[1] * receptive, shape[0] * receptive
}

func uniform(shape tensor.Shape, bound float64, b tensor.Backend) *tensor.Tensor {
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32((rand.Float64()*2 - 1) * bound)
	}
	return tensor.New(data, shape, b)
}

// GlorotUniform samples uniformly from [-limit, limit] with
// limit = sqrt(6 / (fanIn + fanOut)).
func GlorotUniform() Initializer {
	return func(shape tensor.Shape, b tensor.Backend) *tensor.Tensor {
		fanIn, fanOut := fans(shape)
		return uniform(shape, math.Sqrt(6/float64(fanIn+fanOut)), b)
	}
}

// PyTorchUniform samples uniformly from [-limit, limit] with
// limit = 1 / sqrt(fanIn), the default initialization of torch.nn
// linear and convolution layers.
func PyTorchUniform() Initializer {
	return func(shape tensor.Shape, b tensor.Backend) *tensor.Tensor {
		fanIn, _ := fans(shape)
		return uniform(shape, 1/math.Sqrt(float64(fanIn)), b)
	}
}

// TruncatedNormal samples from a normal distribution with the given
// standard deviation, redrawing any value farther than two standard
// deviations from the mean.
func TruncatedNormal(stddev float64) Initializer {
	return func(shape tensor.Shape, b tensor.Backend) *tensor.Tensor {
		data := make([]float32, shape.NumElements())
		for i := range data {
			for {
				v := rand.NormFloat64()
				if v >= -2 && v <= 2 {
					data[i] = float32(v * stddev)
					break
				}
			}
		}
		return tensor.New(data, shape, b)
	}
}
