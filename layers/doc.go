// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layers provides composable neural network building blocks.
//
// Every layer implements the Module interface: a Forward pass over a
// tensor plus access to its trainable Parameters. Layers that carry
// state beyond parameters (running statistics, dropout switches)
// additionally implement StateDicter or expose SetTraining.
//
// Layers compose through containers. Sequential chains modules,
// Parallel fans a single input out to several modules and joins their
// outputs along the feature dimension:
//
//	model := layers.NewSequential(
//		layers.NewDense(784, 256, backend),
//		layers.NewReLU(),
//		layers.NewDense(256, 10, backend),
//	)
//	logits := model.Forward(batch)
//
// Higher-level blocks (DenseBN, ConvBN, ConvBlk, ConvResBlk,
// FastAiHead) bundle the common layer recipes behind a single
// constructor and return ordinary containers, so they nest like any
// other module.
package layers
