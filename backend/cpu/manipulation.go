package cpu

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// Transpose permutes dimensions and materializes the result
// contiguously, so a following Reshape is always valid.
func (bk *Backend) Transpose(a *tensor.Tensor, perm ...int) *tensor.Tensor {
	rank := a.Rank()
	if len(perm) != rank {
		panic(fmt.Sprintf("cpu.Transpose: permutation %v does not match rank %d", perm, rank))
	}
	seen := make([]bool, rank)
	for _, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			panic(fmt.Sprintf("cpu.Transpose: %v is not a permutation of [0, %d)", perm, rank))
		}
		seen[p] = true
	}

	inShape := a.Shape()
	outShape := make(tensor.Shape, rank)
	for i, p := range perm {
		outShape[i] = inShape[p]
	}

	inStrides := inShape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	// srcStrides[i] walks the input as the i-th output index advances.
	srcStrides := make([]int, rank)
	for i, p := range perm {
		srcStrides[i] = inStrides[p]
	}

	ad := a.Data()
	out := make([]float32, len(ad))
	parallel.For(len(out), func(i int) {
		rem, src := i, 0
		for d := 0; d < rank; d++ {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			src += idx * srcStrides[d]
		}
		out[i] = ad[src]
	}, bk.par)
	return tensor.New(out, outShape, bk)
}

// Concat joins tensors along dim. Inputs must share rank and every
// dimension except dim.
func (bk *Backend) Concat(ts []*tensor.Tensor, dim int) *tensor.Tensor {
	if len(ts) == 0 {
		panic("cpu.Concat: no tensors given")
	}
	if len(ts) == 1 {
		return ts[0].Clone()
	}

	rank := ts[0].Rank()
	d := normalizeDim("Concat", dim, rank)
	total := 0
	for i, t := range ts {
		if t.Rank() != rank {
			panic(fmt.Sprintf("cpu.Concat: rank mismatch: %v vs %v", ts[0].Shape(), t.Shape()))
		}
		for j := 0; j < rank; j++ {
			if j != d && t.Shape()[j] != ts[0].Shape()[j] {
				panic(fmt.Sprintf("cpu.Concat: tensor %d shape %v incompatible with %v along dim %d",
					i, t.Shape(), ts[0].Shape(), d))
			}
		}
		total += t.Shape()[d]
	}

	outShape := ts[0].Shape().Clone()
	outShape[d] = total
	outer, _, inner := rowSplit(outShape, d)

	out := make([]float32, outShape.NumElements())
	outChunk := total * inner
	for o := 0; o < outer; o++ {
		offset := o * outChunk
		for _, t := range ts {
			chunk := t.Shape()[d] * inner
			copy(out[offset:offset+chunk], t.Data()[o*chunk:(o+1)*chunk])
			offset += chunk
		}
	}
	return tensor.New(out, outShape, bk)
}

// Slice extracts length elements starting at start along dim.
func (bk *Backend) Slice(a *tensor.Tensor, dim, start, length int) *tensor.Tensor {
	d := normalizeDim("Slice", dim, a.Rank())
	size := a.Shape()[d]
	if length < 1 || start < 0 || start+length > size {
		panic(fmt.Sprintf("cpu.Slice: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, d, size))
	}

	outShape := a.Shape().Clone()
	outShape[d] = length
	outer, _, inner := rowSplit(a.Shape(), d)

	ad := a.Data()
	out := make([]float32, outShape.NumElements())
	inChunk := size * inner
	outChunk := length * inner
	for o := 0; o < outer; o++ {
		from := o*inChunk + start*inner
		copy(out[o*outChunk:(o+1)*outChunk], ad[from:from+outChunk])
	}
	return tensor.New(out, outShape, bk)
}

// Gather looks up rows of a rank-2 table by flattened ids.
func (bk *Backend) Gather(table *tensor.Tensor, ids *tensor.IntTensor) *tensor.Tensor {
	if table.Rank() != 2 {
		panic(fmt.Sprintf("cpu.Gather: expected a rank-2 table, got %v", table.Shape()))
	}
	rows, cols := table.Shape()[0], table.Shape()[1]

	td := table.Data()
	idData := ids.Data()
	out := make([]float32, len(idData)*cols)
	parallel.For(len(idData), func(i int) {
		id := int(idData[i])
		if id < 0 || id >= rows {
			panic(fmt.Sprintf("cpu.Gather: id %d out of range [0, %d)", id, rows))
		}
		copy(out[i*cols:(i+1)*cols], td[id*cols:(id+1)*cols])
	}, bk.batchConfig())
	return tensor.New(out, tensor.Shape{len(idData), cols}, bk)
}
