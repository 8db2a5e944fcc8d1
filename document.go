package revdiff

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// InputError reports a source document that could not be read.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// SentenceInfo describes one sentence slot of a document.
type SentenceInfo struct {
	Text      string `json:"text"`
	Paragraph int    `json:"paragraph_index"`
	Index     int    `json:"sentence_index"`
	Offset    Span   `json:"offset"`
}

// Document is one normalized, segmented version of a text. It is built once
// and only read afterwards, so it is safe to share between goroutines.
type Document struct {
	// Content is the normalized full text. All offsets refer to it.
	Content string

	// Paragraphs holds the sentence texts of every paragraph. An empty
	// paragraph holds a single "" placeholder sentence.
	Paragraphs [][]string

	// Offsets is the sentence offset table, indexed by global sentence index.
	// Placeholder sentences have NoSpan.
	Offsets []Span

	// Sentences lists every sentence slot in document order.
	Sentences []SentenceInfo

	first []int // global index of the first sentence of each paragraph
}

// ReadDocument reads the file at path and builds a Document from it.
// A missing or unreadable file is reported as an *InputError.
func ReadDocument(ctx context.Context, path string, seg Segmenter) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return NewDocument(ctx, string(data), seg)
}

// NewDocument normalizes text, splits it into paragraphs on "\n", segments
// every non-blank paragraph into sentences and builds the offset table.
// If seg is nil, SentenceSegmenter is used.
func NewDocument(ctx context.Context, text string, seg Segmenter) (*Document, error) {
	if seg == nil {
		seg = SentenceSegmenter{}
	}

	content := Normalize(text)
	raw := strings.Split(content, "\n")

	doc := &Document{
		Content:    content,
		Paragraphs: make([][]string, 0, len(raw)),
		first:      make([]int, 0, len(raw)),
	}
	spans := make([][]Span, 0, len(raw))

	for _, paragraph := range raw {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("segment paragraphs: %w", err)
		}

		var texts []string
		var local []Span
		if !isBlank(paragraph) {
			for _, s := range seg.Segment(paragraph) {
				if s.Span.Start < 0 || s.Span.End > len(paragraph) || s.Span.End <= s.Span.Start {
					continue
				}
				texts = append(texts, paragraph[s.Span.Start:s.Span.End])
				local = append(local, s.Span)
			}
		}
		if len(texts) == 0 {
			texts = []string{""}
			local = nil
		}
		doc.Paragraphs = append(doc.Paragraphs, texts)
		spans = append(spans, local)
	}

	doc.Offsets = BuildOffsetTable(raw, spans)

	global := 0
	for p, sents := range doc.Paragraphs {
		doc.first = append(doc.first, global)
		for range sents {
			offset := doc.Offsets[global]
			doc.Sentences = append(doc.Sentences, SentenceInfo{
				Text:      doc.Slice(offset),
				Paragraph: p,
				Index:     global,
				Offset:    offset,
			})
			global++
		}
	}

	return doc, nil
}

// NumSentences returns the number of sentence slots, placeholders included.
func (d *Document) NumSentences() int {
	return len(d.Offsets)
}

// Slice returns the content covered by s, or "" for NoSpan or a span out of range.
func (d *Document) Slice(s Span) string {
	if !s.Valid() || s.End > len(d.Content) {
		return ""
	}
	return d.Content[s.Start:s.End]
}

// SentenceIndex converts a paragraph-local sentence index to a global one.
func (d *Document) SentenceIndex(paragraph, local int) int {
	return d.first[paragraph] + local
}

// ParagraphSentences returns the global indexes of the sentences of a paragraph.
func (d *Document) ParagraphSentences(paragraph int) []int {
	n := len(d.Paragraphs[paragraph])
	out := make([]int, n)
	for i := range out {
		out[i] = d.first[paragraph] + i
	}
	return out
}

// IsPlaceholder reports whether the global sentence index belongs to an
// empty paragraph.
func (d *Document) IsPlaceholder(sentence int) bool {
	return d.Offsets[sentence] == NoSpan
}

// SentenceTokens tokenizes one sentence and returns its tokens with global
// spans. Placeholders have no tokens.
func (d *Document) SentenceTokens(sentence int, tok Tokenizer) []Token {
	offset := d.Offsets[sentence]
	if !offset.Valid() {
		return nil
	}
	return ShiftTokens(tok.Tokenize(d.Slice(offset)), offset.Start)
}
