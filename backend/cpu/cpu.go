// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// Backend executes tensor operations on the host CPU.
type Backend struct {
	par parallel.Config
}

// Compile-time check that Backend satisfies the engine contract.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend with parallelism sized to the machine.
func New() *Backend {
	return &Backend{par: parallel.DefaultConfig()}
}

// NewWithWorkers creates a CPU backend capped at n worker goroutines.
// Zero or negative n means one worker per core.
func NewWithWorkers(n int) *Backend {
	cfg := parallel.DefaultConfig()
	if n > 0 {
		cfg.NumWorkers = n
	}
	return &Backend{par: cfg}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "cpu" }

// batchConfig returns a parallel config suitable for coarse-grained
// loops where each iteration already carries substantial work.
func (b *Backend) batchConfig() parallel.Config {
	cfg := b.par
	cfg.MinChunkSize = 1
	return cfg
}

// normalizeDim resolves negative dimensions and bounds-checks the
// result for the named operation.
func normalizeDim(op string, dim, rank int) int {
	d := dim
	if d < 0 {
		d += rank
	}
	if d < 0 || d >= rank {
		panic(fmt.Sprintf("cpu.%s: dimension %d out of range for rank %d", op, dim, rank))
	}
	return d
}

// rowSplit decomposes a shape around dim into (outer, n, inner) where
// outer is the product of dimensions before dim, n the size of dim,
// and inner the product after. Strided reductions and softmax iterate
// rows addressed as base = o*n*inner + i with step inner.
func rowSplit(shape tensor.Shape, dim int) (outer, n, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}
