package revdiff

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CompareOptions configures Compare.
type CompareOptions struct {
	// Aligner groups paragraphs and sentences. If nil, a VicinityAligner
	// with a TFIDFModel built from both documents is used.
	Aligner Aligner

	// Options configures the per-group word diff.
	Options Options

	// Compensation corrects covering spans for normalization markers.
	// If nil, DefaultCompensation is used; pass an empty table to disable.
	Compensation Compensation

	// Workers bounds the number of concurrent word diffs. Values below 1
	// select runtime.NumCPU().
	Workers int

	// Logger receives debug diagnostics. If nil, nothing is logged.
	Logger *slog.Logger

	// NewID generates the identifier of each aligned paragraph pair.
	// If nil, random UUIDs are used.
	NewID func() string
}

// Group is one aligned set of sentences with the edits between them.
// Source and Target hold global sentence indexes into the first and second
// document.
type Group struct {
	ID     string
	Source []int
	Target []int
	Edits  []Edit
}

// Result is the outcome of comparing two documents.
type Result struct {
	// Groups lists the aligned sentence groups in document order.
	Groups []Group

	// Deleted lists sentences of the first document with no counterpart.
	Deleted []int

	// Inserted lists sentences of the second document with no counterpart.
	Inserted []int

	// NumEdits counts change records in Groups plus unmatched sentences.
	NumEdits int

	// Statistics aggregates word counts over all groups.
	Statistics Statistics
}

// HasChanges reports whether the comparison found any edit.
func (r *Result) HasChanges() bool {
	return r.NumEdits > 0
}

// job is one sentence group to diff. Jobs share only read-only documents.
type job struct {
	id     string
	source []int
	target []int
}

// Compare aligns doc1 and doc2 and computes the word-level edits of every
// aligned sentence group. Groups are diffed concurrently; the result does not
// depend on scheduling.
func Compare(ctx context.Context, doc1, doc2 *Document, opts CompareOptions) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	aligner := opts.Aligner
	if aligner == nil {
		aligner = NewVicinityAligner(NewTFIDFModel(Corpus(doc1, doc2), nil))
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	comp := opts.Compensation
	if comp == nil {
		comp = DefaultCompensation
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	jobs, err := planJobs(ctx, doc1, doc2, aligner, newID)
	if err != nil {
		return nil, err
	}
	logger.Debug("aligned documents",
		"paragraphs1", len(doc1.Paragraphs),
		"paragraphs2", len(doc2.Paragraphs),
		"groups", len(jobs))

	groups := make([]Group, len(jobs))
	stats := make([]Statistics, len(jobs))
	tok := opts.Options.tokenizer()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, jb := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			var tokens1, tokens2 []Token
			for _, s := range jb.source {
				tokens1 = append(tokens1, doc1.SentenceTokens(s, tok)...)
			}
			for _, s := range jb.target {
				tokens2 = append(tokens2, doc2.SentenceTokens(s, tok)...)
			}

			d := DiffTokens(tokens1, tokens2, opts.Options)
			edits := Classify(d, comp)
			for k := range edits {
				edits[k].Text1 = sliceOr(doc1, edits[k].Offset1, edits[k].Text1)
				edits[k].Text2 = sliceOr(doc2, edits[k].Offset2, edits[k].Text2)
			}

			groups[i] = Group{ID: jb.id, Source: jb.source, Target: jb.target, Edits: edits}
			stats[i] = ComputeStatistics(d)
			logger.Debug("diffed group",
				"id", jb.id,
				"source", jb.source,
				"target", jb.target,
				"runs", len(d.Runs),
				"edits", len(edits))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("diff sentence groups: %w", err)
	}

	res := &Result{Groups: groups}
	matched1 := make([]bool, doc1.NumSentences())
	matched2 := make([]bool, doc2.NumSentences())
	for i, g := range groups {
		for _, s := range g.Source {
			matched1[s] = true
		}
		for _, t := range g.Target {
			matched2[t] = true
		}
		for _, e := range g.Edits {
			if e.Type.IsChange() {
				res.NumEdits++
			}
		}
		res.Statistics.Add(stats[i])
	}
	for s, ok := range matched1 {
		if !ok && !doc1.IsPlaceholder(s) {
			res.Deleted = append(res.Deleted, s)
		}
	}
	for t, ok := range matched2 {
		if !ok && !doc2.IsPlaceholder(t) {
			res.Inserted = append(res.Inserted, t)
		}
	}
	res.NumEdits += len(res.Deleted) + len(res.Inserted)

	logger.Debug("compared documents",
		"groups", len(res.Groups),
		"deleted", len(res.Deleted),
		"inserted", len(res.Inserted),
		"edits", res.NumEdits)

	return res, nil
}

// planJobs runs paragraph and sentence alignment and returns one job per
// aligned sentence group, with indexes converted to global sentence indexes.
func planJobs(ctx context.Context, doc1, doc2 *Document, aligner Aligner, newID func() string) ([]job, error) {
	pars, err := aligner.AlignParagraphs(ctx, doc1.Paragraphs, doc2.Paragraphs)
	if err != nil {
		return nil, err
	}

	var jobs []job
	for _, pa := range pars {
		global1 := groupSentences(doc1, pa.Source)
		global2 := groupSentences(doc2, pa.Target)
		if len(global1) == 0 || len(global2) == 0 {
			continue
		}

		texts1 := sentenceTexts(doc1, global1)
		texts2 := sentenceTexts(doc2, global2)
		sents, err := aligner.AlignSentences(ctx, texts1, texts2)
		if err != nil {
			return nil, err
		}

		parID := newID()
		for k, sa := range sents {
			source := toGlobal(doc1, global1, sa.Source)
			target := toGlobal(doc2, global2, sa.Target)
			if len(source) == 0 || len(target) == 0 {
				continue
			}
			jobs = append(jobs, job{
				id:     fmt.Sprintf("%s-%d", parID, k),
				source: source,
				target: target,
			})
		}
	}
	return jobs, nil
}

// groupSentences returns the global indexes of the sentences of the given
// paragraphs, in order.
func groupSentences(doc *Document, paragraphs []int) []int {
	var out []int
	for _, p := range paragraphs {
		if p < 0 || p >= len(doc.Paragraphs) {
			continue
		}
		out = append(out, doc.ParagraphSentences(p)...)
	}
	return out
}

func sentenceTexts(doc *Document, global []int) []string {
	out := make([]string, len(global))
	for i, s := range global {
		out[i] = doc.Sentences[s].Text
	}
	return out
}

// toGlobal maps group-local indexes to global ones, dropping placeholders and
// indexes out of range.
func toGlobal(doc *Document, global []int, local []int) []int {
	var out []int
	for _, l := range local {
		if l < 0 || l >= len(global) {
			continue
		}
		if s := global[l]; !doc.IsPlaceholder(s) {
			out = append(out, s)
		}
	}
	return out
}

// sliceOr returns the document text under s, or fallback when s is NoSpan.
func sliceOr(doc *Document, s Span, fallback string) string {
	if !s.Valid() {
		return fallback
	}
	return doc.Slice(s)
}

// SentenceEdit returns the whole-sentence edit for an unmatched sentence:
// a Deletion for a sentence of doc1 or an Insertion for one of doc2.
func SentenceEdit(doc *Document, sentence int, typ EditType) Edit {
	info := doc.Sentences[sentence]
	e := Edit{Type: typ, Offset1: NoSpan, Offset2: NoSpan}
	switch typ {
	case Deletion:
		e.Offset1 = info.Offset
		e.Text1 = info.Text
	case Insertion:
		e.Offset2 = info.Offset
		e.Text2 = info.Text
	}
	return e
}
