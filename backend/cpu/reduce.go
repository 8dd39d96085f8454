package cpu

import (
	"math"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// SumDim sums along dim.
func (bk *Backend) SumDim(a *tensor.Tensor, dim int, keepDim bool) *tensor.Tensor {
	return bk.reduce("SumDim", a, dim, keepDim, func(row []float32) float32 {
		var sum float64
		for _, v := range row {
			sum += float64(v)
		}
		return float32(sum)
	})
}

// MeanDim averages along dim.
func (bk *Backend) MeanDim(a *tensor.Tensor, dim int, keepDim bool) *tensor.Tensor {
	return bk.reduce("MeanDim", a, dim, keepDim, func(row []float32) float32 {
		var sum float64
		for _, v := range row {
			sum += float64(v)
		}
		return float32(sum / float64(len(row)))
	})
}

// MaxDim takes the maximum along dim.
func (bk *Backend) MaxDim(a *tensor.Tensor, dim int, keepDim bool) *tensor.Tensor {
	return bk.reduce("MaxDim", a, dim, keepDim, func(row []float32) float32 {
		maxVal := float32(math.Inf(-1))
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
		return maxVal
	})
}

func (bk *Backend) reduce(op string, a *tensor.Tensor, dim int, keepDim bool, f func(row []float32) float32) *tensor.Tensor {
	d := normalizeDim(op, dim, a.Rank())
	outer, n, inner := rowSplit(a.Shape(), d)

	outShape := reducedShape(a.Shape(), d, keepDim)
	ad := a.Data()
	out := make([]float32, outer*inner)

	parallel.For(outer*inner, func(r int) {
		o, i := r/inner, r%inner
		base := o*n*inner + i

		if inner == 1 {
			// Reducing a trailing dimension reads contiguous memory.
			out[r] = f(ad[base : base+n])
			return
		}
		row := make([]float32, n)
		for j := 0; j < n; j++ {
			row[j] = ad[base+j*inner]
		}
		out[r] = f(row)
	}, bk.batchConfig())

	return tensor.New(out, outShape, bk)
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, s := range shape {
		if i != dim {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}
