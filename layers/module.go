// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Module is a unit of computation with trainable parameters.
type Module interface {
	// Forward computes the layer output for the given input.
	Forward(x *tensor.Tensor) *tensor.Tensor
	// Parameters returns the trainable parameters of the module,
	// including those of nested modules.
	Parameters() []*Parameter
}

// StateDicter is implemented by modules whose full state, parameters
// and persistent buffers alike, can be exported and restored by name.
type StateDicter interface {
	StateDict() map[string]*tensor.Tensor
	LoadStateDict(sd map[string]*tensor.Tensor) error
}

// trainable is implemented by modules whose behavior differs between
// training and inference.
type trainable interface {
	SetTraining(training bool)
}

// SetTraining switches a module between training and inference mode.
// Modules without mode-dependent behavior are left untouched.
func SetTraining(m Module, training bool) {
	if t, ok := m.(trainable); ok {
		t.SetTraining(training)
	}
}

// Parameter is a named trainable tensor.
type Parameter struct {
	name string
	t    *tensor.Tensor
}

// NewParameter wraps a tensor as a named parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, t: t}
}

// Name returns the parameter name, unique within its owning module.
func (p *Parameter) Name() string { return p.name }

// Tensor returns the current value of the parameter.
func (p *Parameter) Tensor() *tensor.Tensor { return p.t }

// Set replaces the parameter value. The new tensor must have the same
// shape as the current one.
func (p *Parameter) Set(t *tensor.Tensor) error {
	if !p.t.Shape().Equal(t.Shape()) {
		return fmt.Errorf("parameter %s: shape mismatch: want %v, got %v", p.name, p.t.Shape(), t.Shape())
	}
	p.t = t
	return nil
}
