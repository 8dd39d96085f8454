// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Sequential chains modules, feeding each module's output into the
// next.
type Sequential struct {
	modules []Module
}

// NewSequential creates a chain of the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Add appends a module to the chain.
func (s *Sequential) Add(m Module) { s.modules = append(s.modules, m) }

// Len returns the number of modules in the chain.
func (s *Sequential) Len() int { return len(s.modules) }

// Module returns the i-th module of the chain.
func (s *Sequential) Module(i int) Module { return s.modules[i] }

func (s *Sequential) Forward(x *tensor.Tensor) *tensor.Tensor {
	for _, m := range s.modules {
		x = m.Forward(x)
	}
	return x
}

func (s *Sequential) Parameters() []*Parameter {
	return containerParameters(s.modules)
}

// SetTraining propagates the training mode to every module.
func (s *Sequential) SetTraining(training bool) {
	for _, m := range s.modules {
		SetTraining(m, training)
	}
}

// StateDict exports the state of every module, keyed by position.
func (s *Sequential) StateDict() map[string]*tensor.Tensor {
	return containerStateDict(s.modules)
}

// LoadStateDict restores the state of every module.
func (s *Sequential) LoadStateDict(sd map[string]*tensor.Tensor) error {
	return containerLoadStateDict(s.modules, sd)
}

// Parallel feeds one input to several modules and concatenates their
// outputs along the feature dimension.
type Parallel struct {
	modules []Module
}

// NewParallel creates a parallel composition of the given modules.
func NewParallel(modules ...Module) *Parallel {
	return &Parallel{modules: modules}
}

// Add appends a module to the composition.
func (p *Parallel) Add(m Module) { p.modules = append(p.modules, m) }

// Len returns the number of modules in the composition.
func (p *Parallel) Len() int { return len(p.modules) }

// Module returns the i-th module of the composition.
func (p *Parallel) Module(i int) Module { return p.modules[i] }

func (p *Parallel) Forward(x *tensor.Tensor) *tensor.Tensor {
	if len(p.modules) == 0 {
		panic("Parallel.Forward: no modules")
	}
	outs := make([]*tensor.Tensor, len(p.modules))
	for i, m := range p.modules {
		outs[i] = m.Forward(x)
	}
	return tensor.Concat(outs, 1)
}

func (p *Parallel) Parameters() []*Parameter {
	return containerParameters(p.modules)
}

// SetTraining propagates the training mode to every module.
func (p *Parallel) SetTraining(training bool) {
	for _, m := range p.modules {
		SetTraining(m, training)
	}
}

// StateDict exports the state of every module, keyed by position.
func (p *Parallel) StateDict() map[string]*tensor.Tensor {
	return containerStateDict(p.modules)
}

// LoadStateDict restores the state of every module.
func (p *Parallel) LoadStateDict(sd map[string]*tensor.Tensor) error {
	return containerLoadStateDict(p.modules, sd)
}

func containerParameters(modules []Module) []*Parameter {
	var params []*Parameter
	for _, m := range modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// containerStateDict flattens per-module state dicts under the module
// position: the weight of module 0 becomes "0.weight".
func containerStateDict(modules []Module) map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for i, m := range modules {
		prefix := strconv.Itoa(i) + "."
		if sder, ok := m.(StateDicter); ok {
			for name, t := range sder.StateDict() {
				sd[prefix+name] = t
			}
			continue
		}
		for _, p := range m.Parameters() {
			sd[prefix+p.Name()] = p.Tensor()
		}
	}
	return sd
}

func containerLoadStateDict(modules []Module, sd map[string]*tensor.Tensor) error {
	subs := make([]map[string]*tensor.Tensor, len(modules))
	for i := range subs {
		subs[i] = make(map[string]*tensor.Tensor)
	}
	for key, t := range sd {
		idxStr, rest, ok := strings.Cut(key, ".")
		if !ok {
			return fmt.Errorf("container: malformed key %q", key)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(modules) {
			return fmt.Errorf("container: key %q does not address a module", key)
		}
		subs[idx][rest] = t
	}
	for i, m := range modules {
		if sder, ok := m.(StateDicter); ok {
			if err := sder.LoadStateDict(subs[i]); err != nil {
				return fmt.Errorf("container: module %d: %w", i, err)
			}
			continue
		}
		for _, p := range m.Parameters() {
			t, ok := subs[i][p.Name()]
			if !ok {
				return fmt.Errorf("container: module %d: missing key %q", i, p.Name())
			}
			if err := p.Set(t); err != nil {
				return fmt.Errorf("container: module %d: %w", i, err)
			}
		}
	}
	return nil
}
