// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"fmt"
	"strings"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Batch normalization constants matching the torch.nn defaults, used
// by blocks that reproduce PyTorch-trained architectures.
const (
	PyTorchBNMomentum = 0.9
	PyTorchBNEpsilon  = 1e-5
)

// DenseBNConfig configures a dense block.
type DenseBNConfig struct {
	In    int
	Units int
	// Init initializes the dense weight. Defaults to GlorotUniform.
	Init Initializer
	// BNMomentum and BNEpsilon feed the batch normalization and keep
	// its defaults when zero.
	BNMomentum float64
	BNEpsilon  float64
	// DropRate appends a dropout layer when positive.
	DropRate float64
	// ReLUBeforeBN activates before normalizing instead of after.
	ReLUBeforeBN bool
}

// NewDenseBN builds the dense block Dense → BatchNorm → ReLU
// (optionally ReLU before BatchNorm) with an optional trailing
// dropout. The dense layer carries no bias; the normalization shift
// takes its place.
func NewDenseBN(cfg DenseBNConfig, b tensor.Backend) *Sequential {
	s := NewSequential(NewDenseWith(DenseConfig{
		In:     cfg.In,
		Out:    cfg.Units,
		NoBias: true,
		Init:   cfg.Init,
	}, b))
	bn := NewBatchNormWith(BatchNormConfig{
		Features: cfg.Units,
		Momentum: cfg.BNMomentum,
		Epsilon:  cfg.BNEpsilon,
	}, b)
	if cfg.ReLUBeforeBN {
		s.Add(NewReLU())
		s.Add(bn)
	} else {
		s.Add(bn)
		s.Add(NewReLU())
	}
	if cfg.DropRate > 0 {
		s.Add(NewDropout(cfg.DropRate))
	}
	return s
}

// ClassifierConfig configures a classification head.
type ClassifierConfig struct {
	In      int
	Classes int
	// Init initializes the dense weight. Defaults to GlorotUniform.
	Init Initializer
	// Weight scales the logits. Defaults to 1.
	Weight float64
}

// NewClassifier builds a bias-free dense projection to class logits
// followed by a fixed scaling.
func NewClassifier(cfg ClassifierConfig, b tensor.Backend) *Sequential {
	weight := cfg.Weight
	if weight == 0 {
		weight = 1
	}
	return NewSequential(
		NewDenseWith(DenseConfig{
			In:     cfg.In,
			Out:    cfg.Classes,
			NoBias: true,
			Init:   cfg.Init,
		}, b),
		NewScaling(weight),
	)
}

// ConvBNConfig configures a convolution block.
type ConvBNConfig struct {
	InChannels  int
	OutChannels int
	// Kernel defaults to 3.
	Kernel int
	// Stride defaults to 1.
	Stride int
	// Init initializes the kernel. Defaults to GlorotUniform.
	Init       Initializer
	BNMomentum float64
	BNEpsilon  float64
}

// NewConvBN builds Conv2D → BatchNorm → ReLU. The convolution is
// bias-free and pads to keep the spatial size at stride 1.
func NewConvBN(cfg ConvBNConfig, b tensor.Backend) *Sequential {
	kernel := cfg.Kernel
	if kernel == 0 {
		kernel = 3
	}
	return NewSequential(
		NewConv2DWith(Conv2DConfig{
			InChannels:  cfg.InChannels,
			OutChannels: cfg.OutChannels,
			Kernel:      kernel,
			Stride:      cfg.Stride,
			Padding:     kernel / 2,
			NoBias:      true,
			Init:        cfg.Init,
		}, b),
		NewBatchNormWith(BatchNormConfig{
			Features: cfg.OutChannels,
			Momentum: cfg.BNMomentum,
			Epsilon:  cfg.BNEpsilon,
		}, b),
		NewReLU(),
	)
}

// ConvBlkConfig configures a stack of convolution blocks with a
// trailing pooling layer.
type ConvBlkConfig struct {
	InChannels  int
	OutChannels int
	// Convs is the number of ConvBN blocks. Defaults to 1.
	Convs int
	// Kernel defaults to 3.
	Kernel int
	// Pool follows the convolutions. Defaults to 2x2 max pooling.
	Pool       Module
	Init       Initializer
	BNMomentum float64
	BNEpsilon  float64
}

// NewConvBlk builds Convs consecutive ConvBN blocks followed by a
// pooling layer. The first block maps InChannels to OutChannels; the
// rest stay at OutChannels.
func NewConvBlk(cfg ConvBlkConfig, b tensor.Backend) *Sequential {
	convs := cfg.Convs
	if convs == 0 {
		convs = 1
	}
	pool := cfg.Pool
	if pool == nil {
		pool = NewMaxPool2D(2, 0)
	}
	s := NewSequential()
	in := cfg.InChannels
	for i := 0; i < convs; i++ {
		s.Add(NewConvBN(ConvBNConfig{
			InChannels:  in,
			OutChannels: cfg.OutChannels,
			Kernel:      cfg.Kernel,
			Init:        cfg.Init,
			BNMomentum:  cfg.BNMomentum,
			BNEpsilon:   cfg.BNEpsilon,
		}, b))
		in = cfg.OutChannels
	}
	s.Add(pool)
	return s
}

// ConvResBlkConfig configures a residual convolution block.
type ConvResBlkConfig struct {
	ConvBlkConfig
	// ResConvs is the number of ConvBN blocks on the residual branch.
	// Defaults to 2.
	ResConvs int
}

// ConvResBlk is a convolution block with a residual branch: the block
// output h is refined by further convolutions into hh, and the layer
// returns h + hh.
type ConvResBlk struct {
	blk *Sequential
	res *Sequential
}

// NewConvResBlk builds a residual convolution block.
func NewConvResBlk(cfg ConvResBlkConfig, b tensor.Backend) *ConvResBlk {
	resConvs := cfg.ResConvs
	if resConvs == 0 {
		resConvs = 2
	}
	res := NewSequential()
	for i := 0; i < resConvs; i++ {
		res.Add(NewConvBN(ConvBNConfig{
			InChannels:  cfg.OutChannels,
			OutChannels: cfg.OutChannels,
			Kernel:      cfg.Kernel,
			Init:        cfg.Init,
			BNMomentum:  cfg.BNMomentum,
			BNEpsilon:   cfg.BNEpsilon,
		}, b))
	}
	return &ConvResBlk{blk: NewConvBlk(cfg.ConvBlkConfig, b), res: res}
}

func (r *ConvResBlk) Forward(x *tensor.Tensor) *tensor.Tensor {
	h := r.blk.Forward(x)
	hh := r.res.Forward(h)
	return h.Add(hh)
}

func (r *ConvResBlk) Parameters() []*Parameter {
	return append(r.blk.Parameters(), r.res.Parameters()...)
}

// SetTraining propagates the training mode to both branches.
func (r *ConvResBlk) SetTraining(training bool) {
	r.blk.SetTraining(training)
	r.res.SetTraining(training)
}

// StateDict exports both branches under "blk." and "res." prefixes.
func (r *ConvResBlk) StateDict() map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for name, t := range r.blk.StateDict() {
		sd["blk."+name] = t
	}
	for name, t := range r.res.StateDict() {
		sd["res."+name] = t
	}
	return sd
}

// LoadStateDict restores both branches.
func (r *ConvResBlk) LoadStateDict(sd map[string]*tensor.Tensor) error {
	blk := make(map[string]*tensor.Tensor)
	res := make(map[string]*tensor.Tensor)
	for key, t := range sd {
		branch, rest, ok := strings.Cut(key, ".")
		if !ok {
			return fmt.Errorf("convresblk: malformed key %q", key)
		}
		switch branch {
		case "blk":
			blk[rest] = t
		case "res":
			res[rest] = t
		default:
			return fmt.Errorf("convresblk: unknown branch in key %q", key)
		}
	}
	if err := r.blk.LoadStateDict(blk); err != nil {
		return fmt.Errorf("convresblk: blk: %w", err)
	}
	if err := r.res.LoadStateDict(res); err != nil {
		return fmt.Errorf("convresblk: res: %w", err)
	}
	return nil
}

// NewFastAiHead builds the fast.ai-style classification head: dual
// global pooling, batch normalization and dropout, a 512-unit dense
// block, and a classifier, all with PyTorch-style defaults.
func NewFastAiHead(inChannels, classes int, b tensor.Backend) *Sequential {
	s := NewSequential(
		NewGlobalPools2D(),
		NewFlatten(),
		NewBatchNormWith(BatchNormConfig{
			Features: 2 * inChannels,
			Momentum: PyTorchBNMomentum,
			Epsilon:  PyTorchBNEpsilon,
		}, b),
		NewDropout(0.25),
	)
	s.Add(NewDenseBN(DenseBNConfig{
		In:           2 * inChannels,
		Units:        512,
		Init:         PyTorchUniform(),
		BNMomentum:   PyTorchBNMomentum,
		BNEpsilon:    PyTorchBNEpsilon,
		ReLUBeforeBN: true,
	}, b))
	s.Add(NewDropout(0.5))
	s.Add(NewClassifier(ClassifierConfig{
		In:      512,
		Classes: classes,
		Init:    PyTorchUniform(),
	}, b))
	return s
}
