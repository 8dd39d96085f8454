package cpu

import (
	"math"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// Softmax normalizes along dim. The maximum of each row is subtracted
// before exponentiation for numerical stability; entries of -Inf
// therefore contribute exp(-Inf) = 0 exactly, which is what gives
// masked attention positions zero weight. A row consisting only of
// -Inf normalizes to all zeros instead of NaN.
func (bk *Backend) Softmax(a *tensor.Tensor, dim int) *tensor.Tensor {
	d := normalizeDim("Softmax", dim, a.Rank())
	outer, n, inner := rowSplit(a.Shape(), d)

	ad := a.Data()
	out := make([]float32, len(ad))
	negInf := float32(math.Inf(-1))

	parallel.For(outer*inner, func(r int) {
		o, i := r/inner, r%inner
		base := o*n*inner + i

		maxVal := negInf
		for j := 0; j < n; j++ {
			if v := ad[base+j*inner]; v > maxVal {
				maxVal = v
			}
		}
		if maxVal == negInf {
			// Every position masked; the output row stays zero.
			return
		}

		var sum float64
		for j := 0; j < n; j++ {
			e := math.Exp(float64(ad[base+j*inner] - maxVal))
			out[base+j*inner] = float32(e)
			sum += e
		}
		inv := float32(1 / sum)
		for j := 0; j < n; j++ {
			out[base+j*inner] *= inv
		}
	}, bk.batchConfig())

	return tensor.New(out, a.Shape().Clone(), bk)
}
