package revdiff

import (
	"strings"
	"unicode"
)

// BuildOffsetTable converts paragraph-local sentence spans into one table of
// document-global spans, indexed by global sentence index.
//
// paragraphs are the raw paragraph texts in order (the document split on
// "\n"); spans[i] are the sentence spans local to paragraphs[i]. A paragraph
// with no spans is an empty paragraph: it takes one slot holding NoSpan and
// advances the cursor past its whitespace and the newline.
func BuildOffsetTable(paragraphs []string, spans [][]Span) []Span {
	var table []Span
	cursor := 0

	for i, paragraph := range paragraphs {
		var local []Span
		if i < len(spans) {
			local = spans[i]
		}

		if len(local) == 0 {
			table = append(table, NoSpan)
			cursor += len(paragraph) + 1
			continue
		}

		for _, s := range local {
			table = append(table, s.Shift(cursor))
		}

		// Past the last sentence, the newline, and any trailing whitespace.
		cursor += local[len(local)-1].End + 1
		cursor += len(paragraph) - len(strings.TrimRightFunc(paragraph, unicode.IsSpace))
	}

	return table
}

// CheckOffsetTable reports the first index whose span breaks the ordering
// invariants of a sentence offset table: non-sentinel spans must be non-empty
// and must not start before the previous non-sentinel span. It returns -1 if
// the table is well formed.
func CheckOffsetTable(table []Span) int {
	last := -1
	for i, s := range table {
		if s == NoSpan {
			continue
		}
		if !s.Valid() || s.End <= s.Start || s.Start < last {
			return i
		}
		last = s.Start
	}
	return -1
}
