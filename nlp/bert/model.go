// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bert

import (
	"fmt"
	"strings"

	"github.com/simon-perriard/fenwicks/layers"
	"github.com/simon-perriard/fenwicks/tensor"
)

// Model is a BERT encoder.
type Model struct {
	cfg       Config
	backend   tensor.Backend
	emb       *embeddings
	encoder   []*encoderLayer
	pooler    *pooler
	returnAll bool
	training  bool
}

// Option customizes model construction.
type Option func(*Model)

// WithTraining enables the dropout layers. Without it the model runs
// in inference mode and every forward pass is deterministic.
func WithTraining() Option {
	return func(m *Model) { m.training = true }
}

// WithAllEncoderLayers makes Forward record the output of every
// encoder layer, not just the last.
func WithAllEncoderLayers() Option {
	return func(m *Model) { m.returnAll = true }
}

// New builds a BERT model with freshly initialized weights. It
// returns a *ConfigError when the configuration is invalid.
func New(cfg Config, b tensor.Backend, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg, backend: b}
	for _, opt := range opts {
		opt(m)
	}
	m.emb = newEmbeddings(cfg, b)
	m.encoder = make([]*encoderLayer, cfg.NumHiddenLayers)
	for i := range m.encoder {
		l, err := newEncoderLayer(cfg, b)
		if err != nil {
			return nil, err
		}
		m.encoder[i] = l
	}
	m.pooler = newPooler(cfg, b)
	m.setTraining(m.training)
	return m, nil
}

// Config returns the model configuration.
func (m *Model) Config() Config { return m.cfg }

func (m *Model) setTraining(training bool) {
	m.emb.dropout.SetTraining(training)
	for _, l := range m.encoder {
		l.setTraining(training)
	}
}

// Output holds the results of a forward pass.
type Output struct {
	// SequenceOutput is the final encoder layer, [batch, seq, hidden].
	SequenceOutput *tensor.Tensor
	// PooledOutput is the projected first token, [batch, hidden].
	PooledOutput *tensor.Tensor
	// EncoderLayers holds every layer's output, first layer first,
	// when the model was built with WithAllEncoderLayers.
	EncoderLayers []*tensor.Tensor
}

// Forward encodes a batch of token id sequences.
//
// inputIDs is required and must be [batch, seq] with seq at most
// max_position_embeddings. tokenTypeIDs defaults to all zeros and
// inputMask to all ones; when given, both must match the shape of
// inputIDs. Shape problems surface as *tensor.ShapeError.
func (m *Model) Forward(inputIDs, tokenTypeIDs, inputMask *tensor.IntTensor) (*Output, error) {
	if inputIDs == nil {
		return nil, tensor.NewShapeError("input_ids", "[batch, seq]", "nil")
	}
	if inputIDs.Rank() != 2 {
		return nil, tensor.NewShapeError("input_ids", "[batch, seq]", inputIDs.Shape().String())
	}
	batch, seq := inputIDs.Shape()[0], inputIDs.Shape()[1]
	if seq > m.cfg.MaxPositionEmbeddings {
		return nil, tensor.NewShapeError("input_ids",
			fmt.Sprintf("seq <= max_position_embeddings %d", m.cfg.MaxPositionEmbeddings),
			inputIDs.Shape().String())
	}
	if tokenTypeIDs == nil {
		tokenTypeIDs = tensor.IntZeros(tensor.Shape{batch, seq})
	} else if !tokenTypeIDs.Shape().Equal(inputIDs.Shape()) {
		return nil, tensor.NewShapeError("token_type_ids", inputIDs.Shape().String(), tokenTypeIDs.Shape().String())
	}
	if inputMask == nil {
		inputMask = tensor.IntFull(tensor.Shape{batch, seq}, 1)
	} else if !inputMask.Shape().Equal(inputIDs.Shape()) {
		return nil, tensor.NewShapeError("input_mask", inputIDs.Shape().String(), inputMask.Shape().String())
	}

	emb := m.emb.forward(inputIDs, tokenTypeIDs)
	bias := attentionBias(AttentionMask(inputMask, m.backend))

	hidden := tensor.ReshapeToMatrix(emb)
	var all []*tensor.Tensor
	for _, l := range m.encoder {
		hidden, _ = l.forward(hidden, bias, batch, seq)
		if m.returnAll {
			all = append(all, hidden.Reshape(batch, seq, m.cfg.HiddenSize))
		}
	}

	sequence := hidden.Reshape(batch, seq, m.cfg.HiddenSize)
	return &Output{
		SequenceOutput: sequence,
		PooledOutput:   m.pooler.forward(sequence),
		EncoderLayers:  all,
	}, nil
}

// Parameters returns every trainable parameter of the model.
func (m *Model) Parameters() []*layers.Parameter {
	params := m.emb.parameters()
	for _, l := range m.encoder {
		params = append(params, l.parameters()...)
	}
	return append(params, m.pooler.parameters()...)
}

// StateDict exports every weight under its dotted path, for example
// "encoder.layer.0.attention.self.query.weight".
func (m *Model) StateDict() map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	add := func(prefix string, src map[string]*tensor.Tensor) {
		for name, t := range src {
			sd[prefix+name] = t
		}
	}
	add("embeddings.", m.emb.stateDict())
	for i, l := range m.encoder {
		add(fmt.Sprintf("encoder.layer.%d.", i), l.stateDict())
	}
	add("pooler.", m.pooler.stateDict())
	return sd
}

// LoadStateDict restores every weight from a state dict produced by
// StateDict (or converted from a pretrained checkpoint).
func (m *Model) LoadStateDict(sd map[string]*tensor.Tensor) error {
	if err := m.emb.loadStateDict(subDict(sd, "embeddings.")); err != nil {
		return err
	}
	for i, l := range m.encoder {
		if err := l.loadStateDict(subDict(sd, fmt.Sprintf("encoder.layer.%d.", i))); err != nil {
			return fmt.Errorf("bert: layer %d: %w", i, err)
		}
	}
	return m.pooler.loadStateDict(subDict(sd, "pooler."))
}

// subDict filters keys by prefix, stripping it.
func subDict(sd map[string]*tensor.Tensor, prefix string) map[string]*tensor.Tensor {
	sub := make(map[string]*tensor.Tensor)
	for key, t := range sd {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			sub[rest] = t
		}
	}
	return sub
}
