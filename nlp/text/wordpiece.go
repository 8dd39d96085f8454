package text

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/processor"
)

// WordPiece tokenizes text the way BERT expects: basic normalization
// and lowercasing, whitespace and punctuation splitting, greedy
// longest-match subword lookup against a vocab.txt, and the sequence
// wrapped in [CLS] ... [SEP].
type WordPiece struct {
	t      *tk.Tokenizer
	maxLen int
	vocab  int
}

// NewWordPiece loads a BERT vocab.txt, one token per line with the
// line number as id, and builds the tokenizer. Encoded rows are
// truncated and zero-padded to maxLen, special tokens included.
func NewWordPiece(vocabPath string, maxLen int) (*WordPiece, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("text: wordpiece: max length must be positive, got %d", maxLen)
	}
	wp, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]")
	if err != nil {
		return nil, fmt.Errorf("text: wordpiece: load vocab %s: %w", vocabPath, err)
	}
	clsID, sepID, size, err := scanVocab(vocabPath)
	if err != nil {
		return nil, err
	}

	t := tk.NewTokenizer(wp)
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
	t.WithPostProcessor(processor.NewBertProcessing(
		processor.PostToken{Value: "[SEP]", Id: sepID},
		processor.PostToken{Value: "[CLS]", Id: clsID},
	))
	// OnlyFirst is the single-sequence strategy; the default
	// LongestFirst assumes a sentence pair and dereferences the
	// missing second encoding.
	t.WithTruncation(&tk.TruncationParams{MaxLength: maxLen, Strategy: tk.OnlyFirst})
	t.WithPadding(&tk.PaddingParams{})

	return &WordPiece{t: t, maxLen: maxLen, vocab: size}, nil
}

// scanVocab finds the [CLS] and [SEP] ids and the vocabulary size.
// Vocabularies without the special tokens fall back to the BERT-Base
// ids 101 and 102.
func scanVocab(vocabPath string) (clsID, sepID, size int, err error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("text: wordpiece: %w", err)
	}
	defer f.Close()

	clsID, sepID = 101, 102
	scanner := bufio.NewScanner(f)
	for i := 0; scanner.Scan(); i++ {
		switch strings.TrimSpace(scanner.Text()) {
		case "[CLS]":
			clsID = i
		case "[SEP]":
			sepID = i
		}
		size++
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, 0, fmt.Errorf("text: wordpiece: scan vocab %s: %w", vocabPath, err)
	}
	return clsID, sepID, size, nil
}

// MaxLen returns the fixed row length of encoded output.
func (w *WordPiece) MaxLen() int { return w.maxLen }

// VocabSize returns the number of entries in the vocabulary.
func (w *WordPiece) VocabSize() int { return w.vocab }

// Encode tokenizes one text into maxLen token ids and validity flags.
func (w *WordPiece) Encode(text string) (ids, mask []int32, err error) {
	enc, err := w.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), true)
	if err != nil {
		return nil, nil, fmt.Errorf("text: wordpiece: encode: %w", err)
	}
	ids, mask = fixLength(enc.GetIds(), enc.GetAttentionMask(), w.maxLen)
	return ids, mask, nil
}
