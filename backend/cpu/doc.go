// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu implements tensor.Backend on the host CPU.
//
// Matrix products route through gonum's single-precision BLAS
// (blas32.Gemm); batched and convolutional loops parallelize across a
// worker pool sized to the machine. Everything else is straightforward
// strided iteration.
//
// Operations panic on shape violations, matching the tensor.Backend
// contract.
package cpu
