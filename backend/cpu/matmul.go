package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// MatMul multiplies two rank-2 tensors via single-precision BLAS:
// [m, k] x [k, n] → [m, n].
func (bk *Backend) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	if a.Rank() != 2 || b.Rank() != 2 {
		panic(fmt.Sprintf("cpu.MatMul: expected rank-2 tensors, got %v and %v", a.Shape(), b.Shape()))
	}
	m, k := a.Shape()[0], a.Shape()[1]
	k2, n := b.Shape()[0], b.Shape()[1]
	if k != k2 {
		panic(fmt.Sprintf("cpu.MatMul: inner dimensions do not match: %v x %v", a.Shape(), b.Shape()))
	}

	out := make([]float32, m*n)
	gemm(m, k, n, a.Data(), b.Data(), out)
	return tensor.New(out, tensor.Shape{m, n}, bk)
}

// BatchMatMul multiplies the trailing two dimensions of rank >= 3
// tensors with identical leading dimensions, one GEMM per batch
// element, spread across the worker pool.
func (bk *Backend) BatchMatMul(a, b *tensor.Tensor) *tensor.Tensor {
	if a.Rank() < 3 || a.Rank() != b.Rank() {
		panic(fmt.Sprintf("cpu.BatchMatMul: expected rank >= 3 tensors of equal rank, got %v and %v",
			a.Shape(), b.Shape()))
	}
	rank := a.Rank()
	batch := 1
	for i := 0; i < rank-2; i++ {
		if a.Shape()[i] != b.Shape()[i] {
			panic(fmt.Sprintf("cpu.BatchMatMul: leading dimensions do not match: %v vs %v",
				a.Shape(), b.Shape()))
		}
		batch *= a.Shape()[i]
	}
	m, k := a.Shape()[rank-2], a.Shape()[rank-1]
	k2, n := b.Shape()[rank-2], b.Shape()[rank-1]
	if k != k2 {
		panic(fmt.Sprintf("cpu.BatchMatMul: inner dimensions do not match: %v x %v", a.Shape(), b.Shape()))
	}

	outShape := a.Shape().Clone()
	outShape[rank-1] = n
	out := make([]float32, outShape.NumElements())

	ad, bd := a.Data(), b.Data()
	parallel.For(batch, func(i int) {
		gemm(m, k, n,
			ad[i*m*k:(i+1)*m*k],
			bd[i*k*n:(i+1)*k*n],
			out[i*m*n:(i+1)*m*n])
	}, bk.batchConfig())
	return tensor.New(out, outShape, bk)
}

// gemm computes c = a x b for row-major float32 matrices.
func gemm(m, k, n int, a, b, c []float32) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
}
