package bert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-perriard/fenwicks/backend/cpu"
	"github.com/simon-perriard/fenwicks/tensor"
)

func smallConfig() Config {
	cfg := NewConfig(50)
	cfg.HiddenSize = 8
	cfg.NumHiddenLayers = 2
	cfg.NumAttentionHeads = 2
	cfg.IntermediateSize = 16
	cfg.MaxPositionEmbeddings = 16
	cfg.TypeVocabSize = 2
	return cfg
}

func TestForwardShapes(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{2, 7, 7, 3}, tensor.Shape{1, 4})
	out, err := m.Forward(ids, nil, nil)
	require.NoError(t, err)

	require.Equal(t, tensor.Shape{1, 4, 8}, out.SequenceOutput.Shape())
	require.Equal(t, tensor.Shape{1, 8}, out.PooledOutput.Shape())
	require.Nil(t, out.EncoderLayers)
}

func TestNewRejectsIndivisibleHeads(t *testing.T) {
	cfg := smallConfig()
	cfg.HiddenSize = 10
	cfg.NumAttentionHeads = 3

	_, err := New(cfg, cpu.New())
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "num_attention_heads", cerr.Field)
}

func TestMaskedDestinationsGetZeroWeight(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{1, 2, 3, 4}, tensor.Shape{1, 4})
	types := tensor.IntZeros(tensor.Shape{1, 4})
	mask := tensor.NewInt([]int32{1, 1, 0, 0}, tensor.Shape{1, 4})

	emb := m.emb.forward(ids, types)
	bias := attentionBias(AttentionMask(mask, b))
	_, probs := m.encoder[0].att.forward(tensor.ReshapeToMatrix(emb), bias, 1, 4)

	require.Equal(t, tensor.Shape{1, 2, 4, 4}, probs.Shape())
	for head := 0; head < 2; head++ {
		for src := 0; src < 4; src++ {
			for _, dst := range []int{2, 3} {
				if got := probs.At(0, head, src, dst); got != 0 {
					t.Fatalf("head %d source %d destination %d: weight %v, want exactly 0", head, src, dst, got)
				}
			}
			sum := probs.At(0, head, src, 0) + probs.At(0, head, src, 1)
			require.InDelta(t, 1.0, float64(sum), 1e-5, "head %d source %d", head, src)
		}
	}
}

func TestFullyMaskedSequence(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{1, 2, 3, 4}, tensor.Shape{1, 4})
	mask := tensor.IntZeros(tensor.Shape{1, 4})

	out, err := m.Forward(ids, nil, mask)
	require.NoError(t, err)
	for i, v := range out.SequenceOutput.Data() {
		if math.IsNaN(float64(v)) {
			t.Fatalf("element %d of sequence output is NaN", i)
		}
	}
	for i, v := range out.PooledOutput.Data() {
		if math.IsNaN(float64(v)) {
			t.Fatalf("element %d of pooled output is NaN", i)
		}
	}
}

func TestForwardDeterminism(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{5, 9, 1, 0}, tensor.Shape{1, 4})
	mask := tensor.NewInt([]int32{1, 1, 1, 0}, tensor.Shape{1, 4})

	first, err := m.Forward(ids, nil, mask)
	require.NoError(t, err)
	second, err := m.Forward(ids, nil, mask)
	require.NoError(t, err)

	require.Equal(t, first.SequenceOutput.Data(), second.SequenceOutput.Data())
	require.Equal(t, first.PooledOutput.Data(), second.PooledOutput.Data())
}

func TestTrainingDropoutVariesOutputs(t *testing.T) {
	cfg := smallConfig()
	cfg.HiddenDropoutProb = 0.5
	m, err := New(cfg, cpu.New(), WithTraining())
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{5, 9, 1, 0}, tensor.Shape{1, 4})
	first, err := m.Forward(ids, nil, nil)
	require.NoError(t, err)
	second, err := m.Forward(ids, nil, nil)
	require.NoError(t, err)

	require.NotEqual(t, first.SequenceOutput.Data(), second.SequenceOutput.Data())
}

func TestSequenceLengthBoundary(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	atLimit := tensor.IntZeros(tensor.Shape{1, 16})
	out, err := m.Forward(atLimit, nil, nil)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 16, 8}, out.SequenceOutput.Shape())

	over := tensor.IntZeros(tensor.Shape{1, 17})
	_, err = m.Forward(over, nil, nil)
	var serr *tensor.ShapeError
	require.ErrorAs(t, err, &serr)
}

func TestWordEmbeddingIdempotence(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	// Token id 7 appears at positions 0, 2, and 3.
	ids := tensor.NewInt([]int32{7, 1, 7, 7}, tensor.Shape{1, 4})
	words := m.emb.word.Tensor().Gather(ids)

	h := m.cfg.HiddenSize
	rows := words.Data()
	require.Equal(t, rows[:h], rows[2*h:3*h])
	require.Equal(t, rows[:h], rows[3*h:4*h])

	// The full embedding still distinguishes the positions.
	full := m.emb.forward(ids, tensor.IntZeros(tensor.Shape{1, 4})).Data()
	require.NotEqual(t, full[:h], full[2*h:3*h])
}

func TestForwardDefaults(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{3, 1, 4, 1}, tensor.Shape{1, 4})
	implicit, err := m.Forward(ids, nil, nil)
	require.NoError(t, err)
	explicit, err := m.Forward(ids, tensor.IntZeros(tensor.Shape{1, 4}), tensor.IntFull(tensor.Shape{1, 4}, 1))
	require.NoError(t, err)

	require.Equal(t, explicit.SequenceOutput.Data(), implicit.SequenceOutput.Data())
	require.Equal(t, explicit.PooledOutput.Data(), implicit.PooledOutput.Data())
}

func TestForwardRejectsBadInputs(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	var serr *tensor.ShapeError

	_, err = m.Forward(nil, nil, nil)
	require.ErrorAs(t, err, &serr)

	_, err = m.Forward(tensor.IntZeros(tensor.Shape{4}), nil, nil)
	require.ErrorAs(t, err, &serr)

	ids := tensor.IntZeros(tensor.Shape{1, 4})
	_, err = m.Forward(ids, tensor.IntZeros(tensor.Shape{1, 5}), nil)
	require.ErrorAs(t, err, &serr)

	_, err = m.Forward(ids, nil, tensor.IntZeros(tensor.Shape{2, 4}))
	require.ErrorAs(t, err, &serr)
}

func TestStateDictRoundTrip(t *testing.T) {
	b := cpu.New()
	src, err := New(smallConfig(), b)
	require.NoError(t, err)
	dst, err := New(smallConfig(), b)
	require.NoError(t, err)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	ids := tensor.NewInt([]int32{2, 7, 7, 3}, tensor.Shape{1, 4})
	want, err := src.Forward(ids, nil, nil)
	require.NoError(t, err)
	got, err := dst.Forward(ids, nil, nil)
	require.NoError(t, err)

	require.Equal(t, want.SequenceOutput.Data(), got.SequenceOutput.Data())
	require.Equal(t, want.PooledOutput.Data(), got.PooledOutput.Data())
}

func TestStateDictKeys(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	sd := m.StateDict()
	for _, key := range []string{
		"embeddings.word_embeddings",
		"embeddings.token_type_embeddings",
		"embeddings.position_embeddings",
		"embeddings.norm.gamma",
		"encoder.layer.0.attention.self.query.weight",
		"encoder.layer.1.output.norm.beta",
		"pooler.dense.weight",
	} {
		require.Contains(t, sd, key)
	}

	// 3 embedding tables + 2 norm params + 16 per layer + 2 pooler.
	require.Len(t, sd, 3+2+2*16+2)
}

func TestAllEncoderLayers(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b, WithAllEncoderLayers())
	require.NoError(t, err)

	ids := tensor.NewInt([]int32{2, 7, 7, 3}, tensor.Shape{1, 4})
	out, err := m.Forward(ids, nil, nil)
	require.NoError(t, err)

	require.Len(t, out.EncoderLayers, 2)
	for _, layer := range out.EncoderLayers {
		require.Equal(t, tensor.Shape{1, 4, 8}, layer.Shape())
	}
	require.Equal(t, out.SequenceOutput.Data(), out.EncoderLayers[1].Data())
}

func TestParametersCount(t *testing.T) {
	b := cpu.New()
	m, err := New(smallConfig(), b)
	require.NoError(t, err)

	// Embeddings: 3 tables + 2 norm. Per layer: q/k/v/attOut/inter/out
	// each weight+bias (12) + two norms (4). Pooler: weight + bias.
	require.Len(t, m.Parameters(), 5+2*16+2)
}
