package text

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken tokenizes with an OpenAI BPE encoding. Unlike WordPiece it
// adds no special tokens; the mask simply separates real tokens from
// padding.
type Tiktoken struct {
	enc    *tiktoken.Tiktoken
	maxLen int
}

// NewTiktoken builds a tokenizer for the named encoding, for example
// "cl100k_base". Loading an encoding for the first time downloads its
// BPE ranks.
func NewTiktoken(encoding string, maxLen int) (*Tiktoken, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("text: tiktoken: max length must be positive, got %d", maxLen)
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("text: tiktoken: encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc, maxLen: maxLen}, nil
}

// MaxLen returns the fixed row length of encoded output.
func (t *Tiktoken) MaxLen() int { return t.maxLen }

// Encode tokenizes one text into maxLen token ids and validity flags.
func (t *Tiktoken) Encode(text string) (ids, mask []int32, err error) {
	raw := t.enc.Encode(text, nil, nil)
	rowIDs := make([]int32, t.maxLen)
	rowMask := make([]int32, t.maxLen)
	for i := 0; i < len(raw) && i < t.maxLen; i++ {
		rowIDs[i] = int32(raw[i])
		rowMask[i] = 1
	}
	return rowIDs, rowMask, nil
}

// Decode maps token ids back to text. The caller strips padding
// first; id 0 is a real token in the BPE vocabularies.
func (t *Tiktoken) Decode(ids []int32) string {
	raw := make([]int, len(ids))
	for i, id := range ids {
		raw[i] = int(id)
	}
	return t.enc.Decode(raw)
}
