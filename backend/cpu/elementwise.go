package cpu

import (
	"fmt"
	"math"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// Add returns a + b with broadcasting.
func (bk *Backend) Add(a, b *tensor.Tensor) *tensor.Tensor {
	return bk.binary("Add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub returns a - b with broadcasting.
func (bk *Backend) Sub(a, b *tensor.Tensor) *tensor.Tensor {
	return bk.binary("Sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns the element-wise product with broadcasting.
func (bk *Backend) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	return bk.binary("Mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div returns the element-wise quotient with broadcasting.
func (bk *Backend) Div(a, b *tensor.Tensor) *tensor.Tensor {
	return bk.binary("Div", a, b, func(x, y float32) float32 { return x / y })
}

func (bk *Backend) binary(op string, a, b *tensor.Tensor, f func(x, y float32) float32) *tensor.Tensor {
	if a.Shape().Equal(b.Shape()) {
		ad, bd := a.Data(), b.Data()
		out := make([]float32, len(ad))
		parallel.For(len(out), func(i int) {
			out[i] = f(ad[i], bd[i])
		}, bk.par)
		return tensor.New(out, a.Shape().Clone(), bk)
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu.%s: %v", op, err))
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)

	ad, bd := a.Data(), b.Data()
	out := make([]float32, outShape.NumElements())
	parallel.For(len(out), func(i int) {
		rem, aOff, bOff := i, 0, 0
		for d := range outStrides {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			aOff += idx * aStrides[d]
			bOff += idx * bStrides[d]
		}
		out[i] = f(ad[aOff], bd[bOff])
	}, bk.par)
	return tensor.New(out, outShape, bk)
}

// broadcastStrides computes per-dimension strides for reading a tensor
// of shape s as if it had the broadcast shape out: dimensions of size
// 1 (or missing on the left) get stride 0 so the same element repeats.
func broadcastStrides(s, out tensor.Shape) []int {
	strides := make([]int, len(out))
	sStrides := s.ComputeStrides()
	offset := len(out) - len(s)
	for i := range out {
		si := i - offset
		if si < 0 || s[si] == 1 {
			strides[i] = 0
		} else {
			strides[i] = sStrides[si]
		}
	}
	return strides
}

// AddScalar returns a + s applied element-wise.
func (bk *Backend) AddScalar(a *tensor.Tensor, s float32) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return x + s })
}

// MulScalar returns a * s applied element-wise.
func (bk *Backend) MulScalar(a *tensor.Tensor, s float32) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return x * s })
}

// Exp returns e^a applied element-wise.
func (bk *Backend) Exp(a *tensor.Tensor) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return float32(math.Exp(float64(x))) })
}

// Tanh returns tanh(a) applied element-wise.
func (bk *Backend) Tanh(a *tensor.Tensor) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return float32(math.Tanh(float64(x))) })
}

// Erf returns the Gauss error function applied element-wise.
func (bk *Backend) Erf(a *tensor.Tensor) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return float32(math.Erf(float64(x))) })
}

// Sqrt returns the element-wise square root.
func (bk *Backend) Sqrt(a *tensor.Tensor) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return float32(math.Sqrt(float64(x))) })
}

// Rsqrt returns the element-wise reciprocal square root.
func (bk *Backend) Rsqrt(a *tensor.Tensor) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 { return float32(1 / math.Sqrt(float64(x))) })
}

// ReLU returns max(0, a) applied element-wise.
func (bk *Backend) ReLU(a *tensor.Tensor) *tensor.Tensor {
	return bk.unary(a, func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

func (bk *Backend) unary(a *tensor.Tensor, f func(x float32) float32) *tensor.Tensor {
	ad := a.Data()
	out := make([]float32, len(ad))
	parallel.For(len(out), func(i int) {
		out[i] = f(ad[i])
	}, bk.par)
	return tensor.New(out, a.Shape().Clone(), bk)
}
