package bert

import "fmt"

// Config holds the architecture hyperparameters of a BERT model. The
// mapstructure tags match the keys of the standard bert_config.json
// files published with pretrained checkpoints.
type Config struct {
	VocabSize                 int     `mapstructure:"vocab_size"`
	HiddenSize                int     `mapstructure:"hidden_size"`
	NumHiddenLayers           int     `mapstructure:"num_hidden_layers"`
	NumAttentionHeads         int     `mapstructure:"num_attention_heads"`
	IntermediateSize          int     `mapstructure:"intermediate_size"`
	HiddenAct                 string  `mapstructure:"hidden_act"`
	HiddenDropoutProb         float64 `mapstructure:"hidden_dropout_prob"`
	AttentionProbsDropoutProb float64 `mapstructure:"attention_probs_dropout_prob"`
	MaxPositionEmbeddings     int     `mapstructure:"max_position_embeddings"`
	TypeVocabSize             int     `mapstructure:"type_vocab_size"`
	InitializerRange          float64 `mapstructure:"initializer_range"`
}

// NewConfig returns the BERT-Base configuration for the given
// vocabulary size.
func NewConfig(vocabSize int) Config {
	return Config{
		VocabSize:                 vocabSize,
		HiddenSize:                768,
		NumHiddenLayers:           12,
		NumAttentionHeads:         12,
		IntermediateSize:          3072,
		HiddenAct:                 "gelu",
		HiddenDropoutProb:         0.1,
		AttentionProbsDropoutProb: 0.1,
		MaxPositionEmbeddings:     512,
		TypeVocabSize:             16,
		InitializerRange:          0.02,
	}
}

// HeadSize returns the per-head width of the attention projections.
func (c Config) HeadSize() int { return c.HiddenSize / c.NumAttentionHeads }

// Validate checks the configuration, returning a *ConfigError
// describing the first problem found.
func (c Config) Validate() error {
	switch {
	case c.VocabSize <= 0:
		return &ConfigError{Field: "vocab_size", Reason: fmt.Sprintf("must be positive, got %d", c.VocabSize)}
	case c.HiddenSize <= 0:
		return &ConfigError{Field: "hidden_size", Reason: fmt.Sprintf("must be positive, got %d", c.HiddenSize)}
	case c.NumHiddenLayers <= 0:
		return &ConfigError{Field: "num_hidden_layers", Reason: fmt.Sprintf("must be positive, got %d", c.NumHiddenLayers)}
	case c.NumAttentionHeads <= 0:
		return &ConfigError{Field: "num_attention_heads", Reason: fmt.Sprintf("must be positive, got %d", c.NumAttentionHeads)}
	case c.HiddenSize%c.NumAttentionHeads != 0:
		return &ConfigError{
			Field:  "num_attention_heads",
			Reason: fmt.Sprintf("hidden_size %d not divisible by num_attention_heads %d", c.HiddenSize, c.NumAttentionHeads),
		}
	case c.IntermediateSize <= 0:
		return &ConfigError{Field: "intermediate_size", Reason: fmt.Sprintf("must be positive, got %d", c.IntermediateSize)}
	case c.HiddenDropoutProb < 0 || c.HiddenDropoutProb >= 1:
		return &ConfigError{Field: "hidden_dropout_prob", Reason: fmt.Sprintf("must be in [0, 1), got %v", c.HiddenDropoutProb)}
	case c.AttentionProbsDropoutProb < 0 || c.AttentionProbsDropoutProb >= 1:
		return &ConfigError{Field: "attention_probs_dropout_prob", Reason: fmt.Sprintf("must be in [0, 1), got %v", c.AttentionProbsDropoutProb)}
	case c.MaxPositionEmbeddings <= 0:
		return &ConfigError{Field: "max_position_embeddings", Reason: fmt.Sprintf("must be positive, got %d", c.MaxPositionEmbeddings)}
	case c.TypeVocabSize <= 0:
		return &ConfigError{Field: "type_vocab_size", Reason: fmt.Sprintf("must be positive, got %d", c.TypeVocabSize)}
	case c.InitializerRange <= 0:
		return &ConfigError{Field: "initializer_range", Reason: fmt.Sprintf("must be positive, got %v", c.InitializerRange)}
	}
	if _, err := activation(c.HiddenAct); err != nil {
		return err
	}
	return nil
}
