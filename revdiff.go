// Package revdiff compares two versions of a document at word granularity.
//
// Paragraphs and sentences of the two versions are aligned first. Each
// aligned group of sentences is then diffed word by word, and every edit is
// reported as a same, deletion, insertion or substitution record anchored to
// exact byte offsets in both normalized source texts.
//
// The word diff is built on a character-level diff primitive: every distinct
// word chunk is encoded as a single rune (see SymbolTable), the rune strings
// are diffed, and the result is decoded back into word runs that carry the
// number of tokens they consumed. Those counts drive the offset reconciliation
// in Classify.
//
// For example, when comparing:
//
//	Now here we have a substitution
//	Now here we have a substitute
//
// the edits are a same record for "Now here we have a" followed by one
// substitution record "substitution" -> "substitute", rather than a separate
// deletion and insertion.
package revdiff

import (
	"encoding/json"
	"fmt"
)

// Operation represents a word-diff operation type.
type Operation int

const (
	// Equal indicates the words are unchanged.
	Equal Operation = iota
	// Insert indicates the words were added in the second text.
	Insert
	// Delete indicates the words were removed from the first text.
	Delete
)

// String returns a human-readable representation of the operation.
func (o Operation) String() string {
	switch o {
	case Equal:
		return "Equal"
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Span is a half-open byte range [Start, End) in a source text.
type Span struct {
	Start int
	End   int
}

// NoSpan marks a side that has no corresponding range, such as the second
// side of a deletion or an empty paragraph in a sentence offset table.
var NoSpan = Span{Start: -1, End: -1}

// Valid reports whether s refers to an actual range.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Shift returns s moved by delta bytes. NoSpan is returned unchanged.
func (s Span) Shift(delta int) Span {
	if !s.Valid() {
		return s
	}
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// MarshalJSON encodes a span as a two element array.
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

// UnmarshalJSON decodes a two element array.
func (s *Span) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

func (s Span) String() string {
	return fmt.Sprintf("(%d,%d)", s.Start, s.End)
}

// EditType classifies an edit record.
type EditType int

const (
	// Same marks text present unchanged in both versions.
	Same EditType = iota
	// Deletion marks text only present in the first version.
	Deletion
	// Insertion marks text only present in the second version.
	Insertion
	// Substitution marks text of the first version replaced by text of the second.
	Substitution
)

// String returns the name used in the output document and rendered views.
func (t EditType) String() string {
	switch t {
	case Same:
		return "same"
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	case Substitution:
		return "substitution"
	default:
		return "unknown"
	}
}

// IsChange reports whether t is anything other than Same.
func (t EditType) IsChange() bool {
	return t == Deletion || t == Insertion || t == Substitution
}

// MarshalText implements encoding.TextMarshaler.
func (t EditType) MarshalText() ([]byte, error) {
	if t < Same || t > Substitution {
		return nil, fmt.Errorf("invalid edit type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EditType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "same":
		*t = Same
	case "deletion":
		*t = Deletion
	case "insertion":
		*t = Insertion
	case "substitution":
		*t = Substitution
	default:
		return fmt.Errorf("unknown edit type %q", text)
	}
	return nil
}

// Edit is one classified edit with its position in both source texts.
//
// For a Deletion, Offset2 is NoSpan and Text2 is empty. For an Insertion,
// Offset1 is NoSpan and Text1 is empty.
type Edit struct {
	Type    EditType `json:"edit_type"`
	Offset1 Span     `json:"offset1"`
	Offset2 Span     `json:"offset2"`
	Text1   string   `json:"text1"`
	Text2   string   `json:"text2"`
}

// HasChanges returns true if the edit slice contains any non-Same record.
func HasChanges(edits []Edit) bool {
	for _, e := range edits {
		if e.Type.IsChange() {
			return true
		}
	}
	return false
}

// Statistics holds word counts about a comparison.
type Statistics struct {
	OldWords      int // total words in the first version
	NewWords      int // total words in the second version
	CommonWords   int // words in same records
	DeletedWords  int // words deleted, including the old side of substitutions
	InsertedWords int // words inserted, including the new side of substitutions
	Substitutions int // number of substitution records
}

// Add accumulates other into st.
func (st *Statistics) Add(other Statistics) {
	st.OldWords += other.OldWords
	st.NewWords += other.NewWords
	st.CommonWords += other.CommonWords
	st.DeletedWords += other.DeletedWords
	st.InsertedWords += other.InsertedWords
	st.Substitutions += other.Substitutions
}

// ComputeStatistics calculates statistics for the runs of a word diff.
func ComputeStatistics(d WordDiff) Statistics {
	var st Statistics
	st.OldWords = len(d.Offsets1)
	st.NewWords = len(d.Offsets2)

	for i, r := range d.Runs {
		switch r.Op {
		case Equal:
			st.CommonWords += r.Tokens
		case Delete:
			st.DeletedWords += r.Tokens
			if i+1 < len(d.Runs) && d.Runs[i+1].Op == Insert {
				st.Substitutions++
			}
		case Insert:
			st.InsertedWords += r.Tokens
		}
	}

	return st
}
