// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensor type and the execution
// backend contract used by every layer in fenwicks.
//
// The package defines:
//   - Shape: dimension list with validation, strides, and NumPy-style
//     broadcasting rules
//   - Tensor: a float32 tensor bound to a Backend that executes its
//     operations
//   - IntTensor: an integer tensor for token ids and validity masks
//   - Backend: the interface an execution engine implements
//
// Tensors are immutable under arithmetic: every operation allocates a
// new result tensor. Reshape is the one exception, returning a view
// that shares the underlying buffer.
//
// Operations panic on shape violations; they are programmer errors at
// this level. Model-facing input validation lives in the model
// packages and reports *ShapeError instead.
//
// Example:
//
//	b := cpu.New()
//	x := tensor.New([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
//	y := tensor.Ones(tensor.Shape{2, 2}, b)
//	z := x.MatMul(y) // [2, 2]
package tensor
