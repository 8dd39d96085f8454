// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package text

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Tokenizer converts one text into a fixed-length row of token ids
// with a matching validity mask: 1 for real tokens, 0 for padding.
type Tokenizer interface {
	Encode(text string) (ids, mask []int32, err error)
}

// EncodeBatch tokenizes texts into model-ready input tensors: token
// ids, validity mask, and all-zero segment ids, each shaped
// [len(texts), row length].
func EncodeBatch(tok Tokenizer, texts []string) (ids, mask, typeIDs *tensor.IntTensor, err error) {
	if len(texts) == 0 {
		return nil, nil, nil, fmt.Errorf("text: encode batch: no texts")
	}
	var idData, maskData []int32
	width := 0
	for i, txt := range texts {
		rowIDs, rowMask, err := tok.Encode(txt)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("text: encode batch: text %d: %w", i, err)
		}
		if width == 0 {
			width = len(rowIDs)
			idData = make([]int32, 0, len(texts)*width)
			maskData = make([]int32, 0, len(texts)*width)
		}
		if len(rowIDs) != width || len(rowMask) != width {
			return nil, nil, nil, fmt.Errorf("text: encode batch: text %d: row length %d, want %d", i, len(rowIDs), width)
		}
		idData = append(idData, rowIDs...)
		maskData = append(maskData, rowMask...)
	}
	shape := tensor.Shape{len(texts), width}
	return tensor.NewInt(idData, shape), tensor.NewInt(maskData, shape), tensor.IntZeros(shape), nil
}

// fixLength pads or truncates a tokenizer's output to n entries.
// Positions past the mask's length count as real tokens.
func fixLength(ids, mask []int, n int) (outIDs, outMask []int32) {
	outIDs = make([]int32, n)
	outMask = make([]int32, n)
	k := min(len(ids), n)
	for i := 0; i < k; i++ {
		outIDs[i] = int32(ids[i])
		if i < len(mask) {
			outMask[i] = int32(mask[i])
		} else {
			outMask[i] = 1
		}
	}
	return outIDs, outMask
}
