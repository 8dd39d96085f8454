// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// DenseConfig configures a fully connected layer.
type DenseConfig struct {
	In     int
	Out    int
	NoBias bool
	// Init initializes the weight. Defaults to GlorotUniform.
	Init Initializer
}

// Dense is a fully connected layer computing y = x W^T + b over
// [batch, in] inputs. The weight is stored [out, in].
type Dense struct {
	weight *Parameter
	bias   *Parameter
	in     int
	out    int
}

// NewDense creates a fully connected layer with a bias and
// Glorot-uniform weight initialization.
func NewDense(in, out int, b tensor.Backend) *Dense {
	return NewDenseWith(DenseConfig{In: in, Out: out}, b)
}

// NewDenseWith creates a fully connected layer from a config.
func NewDenseWith(cfg DenseConfig, b tensor.Backend) *Dense {
	if cfg.In <= 0 || cfg.Out <= 0 {
		panic(fmt.Sprintf("layers: NewDense: invalid dimensions in=%d out=%d", cfg.In, cfg.Out))
	}
	init := cfg.Init
	if init == nil {
		init = GlorotUniform()
	}
	d := &Dense{
		weight: NewParameter("weight", init(tensor.Shape{cfg.Out, cfg.In}, b)),
		in:     cfg.In,
		out:    cfg.Out,
	}
	if !cfg.NoBias {
		d.bias = NewParameter("bias", tensor.Zeros(tensor.Shape{cfg.Out}, b))
	}
	return d
}

// InFeatures returns the input width of the layer.
func (d *Dense) InFeatures() int { return d.in }

// OutFeatures returns the output width of the layer.
func (d *Dense) OutFeatures() int { return d.out }

// Weight returns the weight parameter, shaped [out, in].
func (d *Dense) Weight() *Parameter { return d.weight }

// Bias returns the bias parameter, or nil for a bias-free layer.
func (d *Dense) Bias() *Parameter { return d.bias }

// Forward applies the layer to a [batch, in] input.
func (d *Dense) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() != 2 || x.Shape()[1] != d.in {
		panic(fmt.Sprintf("Dense.Forward: expected input shape [batch, %d], got %v", d.in, x.Shape()))
	}
	y := x.MatMul(d.weight.Tensor().Transpose(1, 0))
	if d.bias != nil {
		y = y.Add(d.bias.Tensor().Reshape(1, d.out))
	}
	return y
}

// Parameters returns the weight and, when present, the bias.
func (d *Dense) Parameters() []*Parameter {
	if d.bias == nil {
		return []*Parameter{d.weight}
	}
	return []*Parameter{d.weight, d.bias}
}

// StateDict exports the layer parameters keyed by name.
func (d *Dense) StateDict() map[string]*tensor.Tensor {
	sd := map[string]*tensor.Tensor{"weight": d.weight.Tensor()}
	if d.bias != nil {
		sd["bias"] = d.bias.Tensor()
	}
	return sd
}

// LoadStateDict restores the layer parameters from a state dict.
func (d *Dense) LoadStateDict(sd map[string]*tensor.Tensor) error {
	for _, p := range d.Parameters() {
		t, ok := sd[p.Name()]
		if !ok {
			return fmt.Errorf("dense: missing key %q", p.Name())
		}
		if err := p.Set(t); err != nil {
			return fmt.Errorf("dense: %w", err)
		}
	}
	return nil
}
