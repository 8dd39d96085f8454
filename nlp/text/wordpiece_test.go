package text

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simon-perriard/fenwicks/tensor"
)

const testVocab = "[PAD]\n[UNK]\n[CLS]\n[SEP]\nhello\nworld\nplay\n##ing\n"

func newTestWordPiece(t *testing.T, maxLen int) *WordPiece {
	t.Helper()
	wp, err := NewWordPiece(writeTemp(t, "vocab.txt", testVocab), maxLen)
	require.NoError(t, err)
	return wp
}

func TestWordPieceEncode(t *testing.T) {
	wp := newTestWordPiece(t, 8)
	require.Equal(t, 8, wp.VocabSize())

	ids, mask, err := wp.Encode("Hello world")
	require.NoError(t, err)

	require.Equal(t, []int32{2, 4, 5, 3, 0, 0, 0, 0}, ids)
	require.Equal(t, []int32{1, 1, 1, 1, 0, 0, 0, 0}, mask)
}

func TestWordPieceSubwords(t *testing.T) {
	wp := newTestWordPiece(t, 8)

	ids, _, err := wp.Encode("playing")
	require.NoError(t, err)
	require.Equal(t, []int32{2, 6, 7, 3, 0, 0, 0, 0}, ids)
}

func TestWordPieceUnknownToken(t *testing.T) {
	wp := newTestWordPiece(t, 8)

	ids, _, err := wp.Encode("zzz")
	require.NoError(t, err)
	require.Equal(t, []int32{2, 1, 3, 0, 0, 0, 0, 0}, ids)
}

func TestWordPieceTruncates(t *testing.T) {
	wp := newTestWordPiece(t, 4)

	ids, mask, err := wp.Encode("hello world hello world hello")
	require.NoError(t, err)

	require.Len(t, ids, 4)
	require.Equal(t, []int32{1, 1, 1, 1}, mask)
	require.Equal(t, int32(2), ids[0])
}

func TestWordPieceExactLengthFits(t *testing.T) {
	// [CLS] hello world [SEP] fills maxLen exactly; nothing to remove.
	wp := newTestWordPiece(t, 4)

	ids, mask, err := wp.Encode("hello world")
	require.NoError(t, err)
	require.Equal(t, []int32{2, 4, 5, 3}, ids)
	require.Equal(t, []int32{1, 1, 1, 1}, mask)
}

func TestWordPieceRejectsMissingVocab(t *testing.T) {
	_, err := NewWordPiece("nonexistent-vocab.txt", 8)
	require.Error(t, err)
}

func TestWordPieceRejectsBadMaxLen(t *testing.T) {
	_, err := NewWordPiece(writeTemp(t, "vocab.txt", testVocab), 0)
	require.Error(t, err)
}

func TestEncodeBatch(t *testing.T) {
	wp := newTestWordPiece(t, 8)

	ids, mask, types, err := EncodeBatch(wp, []string{"hello world", "playing"})
	require.NoError(t, err)

	want := tensor.Shape{2, 8}
	require.Equal(t, want, ids.Shape())
	require.Equal(t, want, mask.Shape())
	require.Equal(t, want, types.Shape())

	require.Equal(t, []int32{2, 4, 5, 3, 0, 0, 0, 0}, ids.Data()[:8])
	require.Equal(t, []int32{2, 6, 7, 3, 0, 0, 0, 0}, ids.Data()[8:])
	for _, v := range types.Data() {
		require.Zero(t, v)
	}
}

func TestEncodeBatchEmpty(t *testing.T) {
	wp := newTestWordPiece(t, 8)
	_, _, _, err := EncodeBatch(wp, nil)
	require.Error(t, err)
}
