// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense float32 tensor in row-major layout, bound to the
// Backend that executes its operations.
//
// Example:
//
//	x := tensor.New([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)
//	y := x.MulScalar(2)          // [2, 3]
//	m := x.MatMul(y.Transpose(1, 0)) // [2, 2]
type Tensor struct {
	data    []float32
	shape   Shape
	backend Backend
}

// New wraps data in a tensor of the given shape. The slice is used
// directly, not copied. Panics if the data length does not match the
// shape or the shape has non-positive dimensions.
func New(data []float32, shape Shape, b Backend) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor.New: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements()))
	}
	return &Tensor{data: data, shape: shape, backend: b}
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, b Backend) *Tensor {
	return New(make([]float32, shape.NumElements()), shape, b)
}

// Ones creates a one-filled tensor.
func Ones(shape Shape, b Backend) *Tensor {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32, b Backend) *Tensor {
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = value
	}
	return New(data, shape, b)
}

// Rand creates a tensor with uniform random values in [0, 1).
func Rand(shape Shape, b Backend) *Tensor {
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = rand.Float32()
	}
	return New(data, shape, b)
}

// Shape returns the tensor's shape. Callers must not modify it.
func (t *Tensor) Shape() Shape { return t.shape }

// Data returns the underlying buffer. Callers that write through it
// own the aliasing consequences; reshaped views share the buffer.
func (t *Tensor) Data() []float32 { return t.data }

// Backend returns the execution backend this tensor is bound to.
func (t *Tensor) Backend() Backend { return t.backend }

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int { return len(t.shape) }

// NumElements returns the total element count.
func (t *Tensor) NumElements() int { return len(t.data) }

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(indices ...int) float32 {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("Tensor.At: expected %d indices for shape %v, got %d",
			len(t.shape), t.shape, len(indices)))
	}
	offset := 0
	strides := t.shape.ComputeStrides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("Tensor.At: index %d out of range for dimension %d (size %d)",
				idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return t.data[offset]
}

// Clone returns a deep copy sharing nothing with the receiver.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return New(data, t.shape.Clone(), t.backend)
}

// Reshape returns a view with the given dimensions sharing the
// receiver's buffer. The element count must be preserved.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("Tensor.Reshape: %v", err))
	}
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("Tensor.Reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, len(t.data), shape, shape.NumElements()))
	}
	return &Tensor{data: t.data, shape: shape.Clone(), backend: t.backend}
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, backend=%s)", t.shape, t.backend.Name())
}

// Add returns t + other with broadcasting.
func (t *Tensor) Add(other *Tensor) *Tensor { return t.backend.Add(t, other) }

// Sub returns t - other with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor { return t.backend.Sub(t, other) }

// Mul returns the element-wise product t * other with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor { return t.backend.Mul(t, other) }

// Div returns the element-wise quotient t / other with broadcasting.
func (t *Tensor) Div(other *Tensor) *Tensor { return t.backend.Div(t, other) }

// AddScalar returns t + s applied element-wise.
func (t *Tensor) AddScalar(s float32) *Tensor { return t.backend.AddScalar(t, s) }

// MulScalar returns t * s applied element-wise.
func (t *Tensor) MulScalar(s float32) *Tensor { return t.backend.MulScalar(t, s) }

// Exp returns e^t applied element-wise.
func (t *Tensor) Exp() *Tensor { return t.backend.Exp(t) }

// Tanh returns tanh(t) applied element-wise.
func (t *Tensor) Tanh() *Tensor { return t.backend.Tanh(t) }

// Erf returns the Gauss error function applied element-wise.
func (t *Tensor) Erf() *Tensor { return t.backend.Erf(t) }

// Sqrt returns the element-wise square root.
func (t *Tensor) Sqrt() *Tensor { return t.backend.Sqrt(t) }

// Rsqrt returns the element-wise reciprocal square root.
func (t *Tensor) Rsqrt() *Tensor { return t.backend.Rsqrt(t) }

// ReLU returns max(0, t) applied element-wise.
func (t *Tensor) ReLU() *Tensor { return t.backend.ReLU(t) }

// MatMul multiplies two rank-2 tensors: [m, k] x [k, n] → [m, n].
func (t *Tensor) MatMul(other *Tensor) *Tensor { return t.backend.MatMul(t, other) }

// BatchMatMul multiplies the trailing two dimensions of rank >= 3
// tensors with identical leading dimensions.
func (t *Tensor) BatchMatMul(other *Tensor) *Tensor { return t.backend.BatchMatMul(t, other) }

// Transpose permutes dimensions, materializing the result.
func (t *Tensor) Transpose(perm ...int) *Tensor { return t.backend.Transpose(t, perm...) }

// Slice extracts length elements starting at start along dim.
func (t *Tensor) Slice(dim, start, length int) *Tensor {
	return t.backend.Slice(t, dim, start, length)
}

// SumDim sums along dim.
func (t *Tensor) SumDim(dim int, keepDim bool) *Tensor { return t.backend.SumDim(t, dim, keepDim) }

// MeanDim averages along dim.
func (t *Tensor) MeanDim(dim int, keepDim bool) *Tensor { return t.backend.MeanDim(t, dim, keepDim) }

// MaxDim takes the maximum along dim.
func (t *Tensor) MaxDim(dim int, keepDim bool) *Tensor { return t.backend.MaxDim(t, dim, keepDim) }

// Softmax normalizes along dim with max-subtraction.
func (t *Tensor) Softmax(dim int) *Tensor { return t.backend.Softmax(t, dim) }

// Gather treats t as a rank-2 lookup table and gathers rows by id.
func (t *Tensor) Gather(ids *IntTensor) *Tensor { return t.backend.Gather(t, ids) }

// Conv2D convolves a [batch, inC, h, w] tensor with a
// [outC, inC, kh, kw] weight. A nil bias skips the bias add.
func (t *Tensor) Conv2D(weight, bias *Tensor, stride, padding int) *Tensor {
	return t.backend.Conv2D(t, weight, bias, stride, padding)
}

// MaxPool2D pools [batch, c, h, w] spatial windows. A stride of 0
// defaults to the kernel size.
func (t *Tensor) MaxPool2D(kernel, stride int) *Tensor {
	return t.backend.MaxPool2D(t, kernel, stride)
}

// Concat joins tensors along dim. All tensors must share ts[0]'s
// backend.
func Concat(ts []*Tensor, dim int) *Tensor {
	if len(ts) == 0 {
		panic("tensor.Concat: no tensors given")
	}
	return ts[0].backend.Concat(ts, dim)
}

// ReshapeToMatrix flattens a tensor of rank >= 2 to rank 2, folding
// every leading dimension into the first: [d0, ..., dn-1, c] → [d0·...·dn-1, c].
// Per-token dense operations run on this form.
func ReshapeToMatrix(t *Tensor) *Tensor {
	if t.Rank() < 2 {
		panic(fmt.Sprintf("tensor.ReshapeToMatrix: expected rank >= 2, got shape %v", t.shape))
	}
	last := t.shape[len(t.shape)-1]
	return t.Reshape(len(t.data)/last, last)
}

// ReshapeFromMatrix restores a matrix produced by ReshapeToMatrix to
// the given original shape. The trailing dimensions must agree.
func ReshapeFromMatrix(t *Tensor, origShape Shape) *Tensor {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("tensor.ReshapeFromMatrix: expected rank 2, got shape %v", t.shape))
	}
	if origShape[len(origShape)-1] != t.shape[1] {
		panic(fmt.Sprintf("tensor.ReshapeFromMatrix: trailing dimension %d does not match original shape %v",
			t.shape[1], origShape))
	}
	return t.Reshape(origShape...)
}
