package bert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(30522)

	require.Equal(t, Config{
		VocabSize:                 30522,
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
	}, cfg)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 64, cfg.HeadSize())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero vocab", func(c *Config) { c.VocabSize = 0 }, "vocab_size"},
		{"zero hidden", func(c *Config) { c.HiddenSize = 0 }, "hidden_size"},
		{"zero layers", func(c *Config) { c.NumHiddenLayers = 0 }, "num_hidden_layers"},
		{"zero heads", func(c *Config) { c.NumAttentionHeads = 0 }, "num_attention_heads"},
		{"indivisible heads", func(c *Config) { c.HiddenSize = 10; c.NumAttentionHeads = 3 }, "num_attention_heads"},
		{"zero intermediate", func(c *Config) { c.IntermediateSize = 0 }, "intermediate_size"},
		{"dropout one", func(c *Config) { c.HiddenDropoutProb = 1 }, "hidden_dropout_prob"},
		{"negative attention dropout", func(c *Config) { c.AttentionProbsDropoutProb = -0.1 }, "attention_probs_dropout_prob"},
		{"zero positions", func(c *Config) { c.MaxPositionEmbeddings = 0 }, "max_position_embeddings"},
		{"zero type vocab", func(c *Config) { c.TypeVocabSize = 0 }, "type_vocab_size"},
		{"zero initializer range", func(c *Config) { c.InitializerRange = 0 }, "initializer_range"},
		{"unknown activation", func(c *Config) { c.HiddenAct = "swish" }, "hidden_act"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(100)
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestValidateErrorMessage(t *testing.T) {
	cfg := NewConfig(100)
	cfg.HiddenSize = 10
	cfg.NumAttentionHeads = 3

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "not divisible")

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
}
