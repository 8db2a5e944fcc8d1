package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dacharyc/revdiff"
)

// differ runs one comparison with a validated configuration.
type differ struct {
	cfg    config
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	prefix string
	stats  bool
}

func (d differ) run(ctx context.Context, file1, file2 string) (int, error) {
	doc1, err := revdiff.ReadDocument(ctx, file1, nil)
	if err != nil {
		return exitError, err
	}
	doc2, err := revdiff.ReadDocument(ctx, file2, nil)
	if err != nil {
		return exitError, err
	}
	d.logger.Debug("loaded drafts",
		"file1", file1, "sentences1", doc1.NumSentences(),
		"file2", file2, "sentences2", doc2.NumSentences())

	sim, err := d.similarity(doc1, doc2)
	if err != nil {
		return exitError, err
	}

	opts := revdiff.CompareOptions{
		Aligner: &revdiff.VicinityAligner{
			Similarity:      sim,
			MinParagraphSim: d.cfg.MinParSim,
			MinSentenceSim:  d.cfg.MinSentSim,
			Slack:           d.cfg.SimSlack,
			Window:          d.cfg.Window,
		},
		Options:      d.wordOptions(),
		Compensation: revdiff.DefaultCompensation,
		Workers:      d.cfg.Workers,
		Logger:       d.logger,
	}
	res, err := revdiff.Compare(ctx, doc1, doc2, opts)
	if err != nil {
		return exitError, err
	}

	if d.stats {
		printStatistics(d.stderr, res.Statistics)
	}

	if !res.HasChanges() {
		d.logger.Info("no edits found; nothing written", "file1", file1, "file2", file2)
		return exitIdentical, nil
	}

	if err := d.write(file1, file2, doc1, doc2, res); err != nil {
		return exitError, err
	}
	return exitDiffer, nil
}

func (d differ) similarity(doc1, doc2 *revdiff.Document) (revdiff.Similarity, error) {
	switch d.cfg.Similarity {
	case "token":
		return revdiff.TokenSimilarity{Options: d.wordOptions()}, nil
	case "jaro":
		return revdiff.JaroWinklerSimilarity{}, nil
	}
	stop, err := readStopWords(d.cfg.StopWords)
	if err != nil {
		return nil, err
	}
	return revdiff.NewTFIDFModel(revdiff.Corpus(doc1, doc2), stop), nil
}

func (d differ) wordOptions() revdiff.Options {
	opts := revdiff.DefaultOptions()
	opts.Algorithm = revdiff.Algorithm(d.cfg.Algorithm)
	if d.cfg.Tokenizer == "fields" {
		opts.Tokenizer = revdiff.FieldsTokenizer{
			Delimiters:     d.cfg.Delimiters,
			UsePunctuation: d.cfg.Punctuation,
		}
	}
	return opts
}

// write stores the JSON document and the selected view.
func (d differ) write(file1, file2 string, doc1, doc2 *revdiff.Document, res *revdiff.Result) error {
	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	prefix := d.prefix
	if prefix == "" {
		prefix = outputPrefix(file1, file2, d.cfg)
	}

	jsonPath := filepath.Join(d.cfg.OutputDir, prefix+".json")
	out := revdiff.BuildOutput(doc1, doc2, res, d.cfg.IncludeSame)
	if err := writeFile(jsonPath, out.WriteJSON); err != nil {
		return err
	}
	d.logger.Info("wrote edits", "path", jsonPath, "edits", res.NumEdits)

	if d.cfg.Format == "text" {
		fmt.Fprint(d.stdout, revdiff.FormatResult(doc1, doc2, res, d.formatOptions()))
		return nil
	}

	htmlPath := filepath.Join(d.cfg.OutputDir, prefix+".html")
	err := writeFile(htmlPath, func(w io.Writer) error {
		return revdiff.RenderHTML(w, doc1, doc2, res, revdiff.HTMLOptions{
			Header1: d.cfg.Header1,
			Header2: d.cfg.Header2,
		})
	})
	if err != nil {
		return err
	}
	d.logger.Info("wrote view", "path", htmlPath)
	return nil
}

func (d differ) formatOptions() revdiff.FormatOptions {
	opts := revdiff.DefaultFormatOptions()
	opts.StartDelete = d.cfg.StartDelete
	opts.StopDelete = d.cfg.StopDelete
	opts.StartInsert = d.cfg.StartInsert
	opts.StopInsert = d.cfg.StopInsert
	opts.NoDeleted = d.cfg.NoDeleted
	opts.NoInserted = d.cfg.NoInserted
	opts.NoCommon = d.cfg.NoCommon
	opts.LessMode = d.cfg.LessMode
	opts.PrinterMode = d.cfg.Printer

	opts.UseColor = !d.cfg.NoColor && os.Getenv("NO_COLOR") == "" &&
		(isTerminal(d.stdout) || d.cfg.Color != "")
	if opts.LessMode || opts.PrinterMode {
		opts.UseColor = false
	}
	if d.cfg.Color != "" && d.cfg.Color != "default" {
		// validate already checked the color spec.
		opts.DeleteColor, opts.InsertColor, _ = revdiff.ParseColorSpec(d.cfg.Color)
	}
	return opts
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
