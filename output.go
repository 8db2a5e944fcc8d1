package revdiff

import (
	"encoding/json"
	"fmt"
	"io"
)

// InsertedKey is the alignments key that collects inserted sentences.
const InsertedKey = -1

// AlignmentEntry is the output record of one source sentence.
type AlignmentEntry struct {
	Match []int  `json:"match"`
	Edits []Edit `json:"edits"`
}

// Output is the machine-readable comparison document.
type Output struct {
	File1Sentences []SentenceInfo          `json:"file1_sentences"`
	File2Sentences []SentenceInfo          `json:"file2_sentences"`
	Alignments     map[int]*AlignmentEntry `json:"alignments"`
}

// BuildOutput assembles the output document. Every source sentence of an
// aligned group maps to the group's target sentences and edits. A deleted
// sentence maps to an empty match and one deletion edit; inserted sentences
// collect under InsertedKey. Same records are kept only if includeSame is set.
func BuildOutput(doc1, doc2 *Document, res *Result, includeSame bool) Output {
	out := Output{
		File1Sentences: sentenceRecords(doc1),
		File2Sentences: sentenceRecords(doc2),
		Alignments:     make(map[int]*AlignmentEntry),
	}

	for _, g := range res.Groups {
		edits := make([]Edit, 0, len(g.Edits))
		for _, e := range g.Edits {
			if includeSame || e.Type.IsChange() {
				edits = append(edits, e)
			}
		}
		match := append([]int{}, g.Target...)
		for _, s := range g.Source {
			out.Alignments[s] = &AlignmentEntry{Match: match, Edits: edits}
		}
	}

	for _, s := range res.Deleted {
		out.Alignments[s] = &AlignmentEntry{
			Match: []int{},
			Edits: []Edit{SentenceEdit(doc1, s, Deletion)},
		}
	}

	if len(res.Inserted) > 0 {
		entry := &AlignmentEntry{Match: []int{}, Edits: []Edit{}}
		for _, t := range res.Inserted {
			entry.Match = append(entry.Match, t)
			entry.Edits = append(entry.Edits, SentenceEdit(doc2, t, Insertion))
		}
		out.Alignments[InsertedKey] = entry
	}

	return out
}

func sentenceRecords(doc *Document) []SentenceInfo {
	out := make([]SentenceInfo, len(doc.Sentences))
	copy(out, doc.Sentences)
	return out
}

// WriteJSON writes the document as indented JSON.
func (o Output) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
