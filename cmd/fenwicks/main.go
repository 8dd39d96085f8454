// Package main provides the fenwicks CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/simon-perriard/fenwicks/backend/cpu"
	"github.com/simon-perriard/fenwicks/config"
	"github.com/simon-perriard/fenwicks/nlp/bert"
	"github.com/simon-perriard/fenwicks/nlp/text"
)

const version = "v0.0.1-dev"

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "version":
		fmt.Printf("fenwicks %s\n", version)
	case "encode":
		if err := runEncode(log, os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("encode failed")
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("fenwicks - composable deep learning blocks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  encode     Run text through a BERT encoder")
}

func runEncode(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to a YAML config file")
	input := fs.String("text", "", "text to encode")
	tsvPath := fs.String("tsv", "", "tab-separated file to encode instead of -text")
	column := fs.Int("column", 0, "column of the TSV holding the text")
	header := fs.Bool("header", true, "skip the first TSV row")
	if err := fs.Parse(args); err != nil {
		return err
	}

	texts, err := gatherTexts(*input, *tsvPath, *column, *header)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
	}
	log = log.Level(level)

	tok, vocab, err := buildTokenizer(cfg.Tokenizer)
	if err != nil {
		return err
	}
	if vocab > 0 {
		cfg.Model.VocabSize = vocab
	}
	log.Info().
		Str("tokenizer", cfg.Tokenizer.Kind).
		Int("vocab_size", cfg.Model.VocabSize).
		Int("hidden_size", cfg.Model.HiddenSize).
		Int("layers", cfg.Model.NumHiddenLayers).
		Msg("building model")

	b := cpu.NewWithWorkers(cfg.Workers)
	model, err := bert.New(cfg.Model, b)
	if err != nil {
		return err
	}

	ids, mask, types, err := text.EncodeBatch(tok, texts)
	if err != nil {
		return err
	}
	out, err := model.Forward(ids, types, mask)
	if err != nil {
		return err
	}

	pooled := out.PooledOutput
	norms := pooled.Mul(pooled).SumDim(1, false).Sqrt()
	log.Info().
		Str("sequence_shape", out.SequenceOutput.Shape().String()).
		Str("pooled_shape", pooled.Shape().String()).
		Msg("encoded")

	hidden := pooled.Shape()[1]
	for i, txt := range texts {
		log.Info().
			Int("row", i).
			Float64("pooled_norm", float64(norms.At(i))).
			Str("text", truncateRunes(txt, 40)).
			Msg("row encoded")
		k := min(8, hidden)
		fmt.Printf("%d: pooled[:%d] = %v\n", i, k, pooled.Data()[i*hidden:i*hidden+k])
	}
	return nil
}

// truncateRunes shortens s to at most n runes, cutting on a rune
// boundary so multibyte characters stay intact.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// gatherTexts resolves the encode input: a literal -text, or one TSV
// column read with text.TSVLines.
func gatherTexts(literal, tsvPath string, column int, header bool) ([]string, error) {
	switch {
	case literal != "" && tsvPath != "":
		return nil, fmt.Errorf("-text and -tsv are mutually exclusive")
	case literal != "":
		return []string{literal}, nil
	case tsvPath == "":
		return nil, fmt.Errorf("missing -text or -tsv")
	}

	records, err := text.TSVLines(tsvPath)
	if err != nil {
		return nil, err
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	texts := make([]string, 0, len(records))
	for i, rec := range records {
		if column >= len(rec) {
			return nil, fmt.Errorf("row %d of %s has %d columns, need column %d", i, tsvPath, len(rec), column)
		}
		texts = append(texts, rec[column])
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no rows in %s", tsvPath)
	}
	return texts, nil
}

// buildTokenizer returns the configured tokenizer and, when the
// tokenizer knows it, the vocabulary size the model must cover.
func buildTokenizer(cfg config.TokenizerConfig) (text.Tokenizer, int, error) {
	switch cfg.Kind {
	case "wordpiece":
		wp, err := text.NewWordPiece(cfg.VocabFile, cfg.MaxLen)
		if err != nil {
			return nil, 0, err
		}
		return wp, wp.VocabSize(), nil
	case "tiktoken":
		tt, err := text.NewTiktoken(cfg.Encoding, cfg.MaxLen)
		if err != nil {
			return nil, 0, err
		}
		return tt, 0, nil
	}
	return nil, 0, fmt.Errorf("unknown tokenizer kind %q", cfg.Kind)
}
