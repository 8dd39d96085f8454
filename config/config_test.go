package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  hidden_size: 256
  num_attention_heads: 8
tokenizer:
  kind: tiktoken
  max_len: 64
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 256, cfg.Model.HiddenSize)
	require.Equal(t, 8, cfg.Model.NumAttentionHeads)
	// Untouched keys keep their defaults.
	require.Equal(t, 12, cfg.Model.NumHiddenLayers)
	require.Equal(t, "tiktoken", cfg.Tokenizer.Kind)
	require.Equal(t, 64, cfg.Tokenizer.MaxLen)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FENWICKS_MODEL_HIDDEN_SIZE", "384")
	t.Setenv("FENWICKS_TOKENIZER_MAX_LEN", "32")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 384, cfg.Model.HiddenSize)
	require.Equal(t, 32, cfg.Tokenizer.MaxLen)
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  hidden_size: 10\n  num_attention_heads: 3\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
