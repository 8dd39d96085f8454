// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

// Backend is the execution engine contract. Layer and model code never
// computes on raw buffers directly; everything routes through an
// implementation of this interface, so execution engines stay
// swappable behind one seam.
//
// Shape rules are enforced by the backend: operations panic on rank or
// dimension violations. Callers that accept untrusted shapes validate
// first and return *ShapeError.
//
// All operations allocate their result; inputs are never mutated.
type Backend interface {
	// Name returns the backend identifier, e.g. "cpu".
	Name() string

	// Element-wise arithmetic with NumPy-style broadcasting.
	Add(a, b *Tensor) *Tensor
	Sub(a, b *Tensor) *Tensor
	Mul(a, b *Tensor) *Tensor
	Div(a, b *Tensor) *Tensor

	// Scalar arithmetic.
	AddScalar(a *Tensor, s float32) *Tensor
	MulScalar(a *Tensor, s float32) *Tensor

	// Element-wise unary functions.
	Exp(a *Tensor) *Tensor
	Tanh(a *Tensor) *Tensor
	Erf(a *Tensor) *Tensor
	Sqrt(a *Tensor) *Tensor
	Rsqrt(a *Tensor) *Tensor
	ReLU(a *Tensor) *Tensor

	// MatMul multiplies two rank-2 tensors: [m, k] x [k, n] → [m, n].
	MatMul(a, b *Tensor) *Tensor

	// BatchMatMul multiplies the trailing two dimensions of tensors of
	// rank >= 3 with identical leading dimensions:
	// [..., m, k] x [..., k, n] → [..., m, n].
	BatchMatMul(a, b *Tensor) *Tensor

	// Transpose permutes dimensions and materializes the result.
	// perm must be a permutation of [0, rank).
	Transpose(a *Tensor, perm ...int) *Tensor

	// Concat joins tensors along dim. All inputs must share rank and
	// every dimension except dim. Negative dim counts from the end.
	Concat(ts []*Tensor, dim int) *Tensor

	// Slice extracts length elements starting at start along dim.
	Slice(a *Tensor, dim, start, length int) *Tensor

	// Reductions along a single dimension. Negative dim counts from
	// the end. With keepDim the reduced dimension stays as size 1.
	SumDim(a *Tensor, dim int, keepDim bool) *Tensor
	MeanDim(a *Tensor, dim int, keepDim bool) *Tensor
	MaxDim(a *Tensor, dim int, keepDim bool) *Tensor

	// Softmax normalizes along dim with max-subtraction for numerical
	// stability. A row whose entries are all -Inf normalizes to all
	// zeros rather than NaN, so fully masked attention rows stay
	// well-defined.
	Softmax(a *Tensor, dim int) *Tensor

	// Gather looks up rows of a rank-2 table [n, c] by flattened ids,
	// producing [ids.NumElements(), c].
	Gather(table *Tensor, ids *IntTensor) *Tensor

	// Conv2D applies a 2D convolution in NCHW layout.
	// input [n, inC, h, w], weight [outC, inC, kh, kw], bias [outC] or
	// nil → [n, outC, outH, outW].
	Conv2D(input, weight, bias *Tensor, stride, padding int) *Tensor

	// MaxPool2D applies max pooling in NCHW layout with no padding.
	MaxPool2D(input *Tensor, kernel, stride int) *Tensor
}
