// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config loads the application configuration from defaults,
// an optional YAML file, and FENWICKS_-prefixed environment
// variables, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/simon-perriard/fenwicks/nlp/bert"
)

// TokenizerConfig selects and parameterizes a tokenizer.
type TokenizerConfig struct {
	// Kind is "wordpiece" or "tiktoken".
	Kind string `mapstructure:"kind"`
	// VocabFile is the vocab.txt path used by wordpiece.
	VocabFile string `mapstructure:"vocab_file"`
	// Encoding is the BPE encoding name used by tiktoken.
	Encoding string `mapstructure:"encoding"`
	// MaxLen is the fixed encoded row length.
	MaxLen int `mapstructure:"max_len"`
}

// Config is the application configuration.
type Config struct {
	Model     bert.Config     `mapstructure:"model"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	// Workers caps CPU parallelism. Zero means one worker per core.
	Workers int `mapstructure:"workers"`
	// LogLevel is a zerolog level name.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when nothing overrides it:
// BERT-Base over the standard uncased vocabulary.
func Default() Config {
	return Config{
		Model: bert.NewConfig(30522),
		Tokenizer: TokenizerConfig{
			Kind:      "wordpiece",
			VocabFile: "vocab.txt",
			Encoding:  "cl100k_base",
			MaxLen:    128,
		},
		LogLevel: "info",
	}
}

// Load reads the configuration. An empty path skips the file layer;
// environment variables such as FENWICKS_MODEL_HIDDEN_SIZE apply
// either way. The model section is validated before returning.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FENWICKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Model.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides bind even
// without a config file.
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("model.vocab_size", def.Model.VocabSize)
	v.SetDefault("model.hidden_size", def.Model.HiddenSize)
	v.SetDefault("model.num_hidden_layers", def.Model.NumHiddenLayers)
	v.SetDefault("model.num_attention_heads", def.Model.NumAttentionHeads)
	v.SetDefault("model.intermediate_size", def.Model.IntermediateSize)
	v.SetDefault("model.hidden_act", def.Model.HiddenAct)
	v.SetDefault("model.hidden_dropout_prob", def.Model.HiddenDropoutProb)
	v.SetDefault("model.attention_probs_dropout_prob", def.Model.AttentionProbsDropoutProb)
	v.SetDefault("model.max_position_embeddings", def.Model.MaxPositionEmbeddings)
	v.SetDefault("model.type_vocab_size", def.Model.TypeVocabSize)
	v.SetDefault("model.initializer_range", def.Model.InitializerRange)

	v.SetDefault("tokenizer.kind", def.Tokenizer.Kind)
	v.SetDefault("tokenizer.vocab_file", def.Tokenizer.VocabFile)
	v.SetDefault("tokenizer.encoding", def.Tokenizer.Encoding)
	v.SetDefault("tokenizer.max_len", def.Tokenizer.MaxLen)

	v.SetDefault("workers", def.Workers)
	v.SetDefault("log_level", def.LogLevel)
}
