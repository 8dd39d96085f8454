// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bert implements the BERT transformer encoder for inference.
//
// A Model maps token ids, segment ids, and a validity mask to
// contextual embeddings. Construction validates the configuration and
// initializes all weights; pretrained weights load through the state
// dict. The forward pass is:
//
//	model, err := bert.New(bert.NewConfig(30522), backend)
//	if err != nil {
//		return err
//	}
//	out, err := model.Forward(ids, nil, mask)
//	if err != nil {
//		return err
//	}
//	// out.SequenceOutput: [batch, seq, hidden]
//	// out.PooledOutput:   [batch, hidden]
//
// Masked positions receive exactly zero attention weight: the mask
// enters the attention scores as an additive bias of negative
// infinity, which the softmax turns into a hard zero rather than the
// small residual weight a large finite penalty would leave.
package bert
