// Copyright 2025 The Fenwicks Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package text prepares raw text for encoding: cleanup helpers for
// scraped corpora, TSV dataset loading, and tokenizers that map
// sentences to fixed-length token id rows ready for model input.
//
// Two tokenizers are provided. WordPiece reproduces the BERT
// pipeline from a vocab.txt file; Tiktoken wraps the OpenAI BPE
// encodings. Both satisfy the Tokenizer interface consumed by
// EncodeBatch.
package text
