package revdiff

import (
	"strings"

	"github.com/dacharyc/diffx"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Algorithm selects the symbol-level diff algorithm.
type Algorithm string

const (
	// AlgorithmMyers uses diff-match-patch (Myers O(ND) with common
	// prefix/suffix trimming). This is the default.
	AlgorithmMyers Algorithm = "myers"
	// AlgorithmHistogram uses a histogram diff, which anchors on rare words
	// and avoids spurious matches on common words like "the" or "in".
	AlgorithmHistogram Algorithm = "histogram"
)

// Valid reports whether a names a known algorithm. The empty string selects
// the default and is valid.
func (a Algorithm) Valid() bool {
	switch a {
	case "", AlgorithmMyers, AlgorithmHistogram:
		return true
	}
	return false
}

// Options configures the word diff.
type Options struct {
	// Tokenizer splits text into words. If nil, WordTokenizer is used.
	Tokenizer Tokenizer

	// Algorithm is the symbol diff algorithm. If empty, AlgorithmMyers is used.
	Algorithm Algorithm
}

// DefaultOptions returns Options with default settings.
func DefaultOptions() Options {
	return Options{
		Tokenizer: WordTokenizer{},
		Algorithm: AlgorithmMyers,
	}
}

func (o Options) tokenizer() Tokenizer {
	if o.Tokenizer == nil {
		return WordTokenizer{}
	}
	return o.Tokenizer
}

// Run is a maximal span of the word diff with a uniform operation.
type Run struct {
	Op     Operation
	Text   string // decoded chunk text; every word is followed by one space
	Tokens int    // number of tokens the run consumed
}

// WordDiff is the result of a word diff: the runs in order plus the spans of
// every token of both texts. Runs consume the offset lists front to back.
type WordDiff struct {
	Runs     []Run
	Offsets1 []Span
	Offsets2 []Span
}

// Old reconstructs the chunk text of the first input from Equal and Delete runs.
func (d WordDiff) Old() string {
	return d.join(Delete)
}

// New reconstructs the chunk text of the second input from Equal and Insert runs.
func (d WordDiff) New() string {
	return d.join(Insert)
}

func (d WordDiff) join(op Operation) string {
	var sb strings.Builder
	for _, r := range d.Runs {
		if r.Op == Equal || r.Op == op {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

// DiffWords tokenizes both texts and computes their word diff.
func DiffWords(text1, text2 string, opts Options) WordDiff {
	tok := opts.tokenizer()
	return DiffTokens(tok.Tokenize(text1), tok.Tokenize(text2), opts)
}

// DiffTokens computes the word diff between two token sequences. The spans
// of the tokens are carried through unchanged into the result.
func DiffTokens(tokens1, tokens2 []Token, opts Options) WordDiff {
	table := NewSymbolTable()
	sym1, offsets1 := table.Encode(tokens1, Text1SymbolLimit)
	sym2, offsets2 := table.Encode(tokens2, MaxSymbols)

	var runs []symbolRun
	switch opts.Algorithm {
	case AlgorithmHistogram:
		runs = diffSymbolsHistogram(sym1, sym2, table)
	default:
		runs = diffSymbolsMyers(sym1, sym2)
	}

	return WordDiff{
		Runs:     decodeRuns(normalizeRuns(runs), table),
		Offsets1: offsets1,
		Offsets2: offsets2,
	}
}

// symbolRun is one operation over a slice of symbols before decoding.
type symbolRun struct {
	op      Operation
	symbols []rune
}

// diffSymbolsMyers runs diff-match-patch over the symbol strings.
func diffSymbolsMyers(sym1, sym2 []rune) []symbolRun {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	diffs := dmp.DiffMainRunes(sym1, sym2, false)
	runs := make([]symbolRun, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var op Operation
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Delete
		case diffmatchpatch.DiffInsert:
			op = Insert
		default:
			op = Equal
		}
		runs = append(runs, symbolRun{op: op, symbols: []rune(d.Text)})
	}
	return runs
}

// diffSymbolsHistogram runs the diffx histogram diff. Elements are compared
// by their chunk text so its stopword handling sees real words.
func diffSymbolsHistogram(sym1, sym2 []rune, table *SymbolTable) []symbolRun {
	words1 := make([]string, len(sym1))
	for i, r := range sym1 {
		words1[i] = strings.TrimSuffix(table.Chunk(r), boundary)
	}
	words2 := make([]string, len(sym2))
	for i, r := range sym2 {
		words2[i] = strings.TrimSuffix(table.Chunk(r), boundary)
	}

	ops := diffx.DiffHistogram(words1, words2)
	runs := make([]symbolRun, 0, len(ops))
	for _, op := range ops {
		switch op.Type {
		case diffx.Equal:
			if op.AEnd > op.AStart {
				runs = append(runs, symbolRun{op: Equal, symbols: sym1[op.AStart:op.AEnd]})
			}
		case diffx.Delete:
			if op.AEnd > op.AStart {
				runs = append(runs, symbolRun{op: Delete, symbols: sym1[op.AStart:op.AEnd]})
			}
		case diffx.Insert:
			if op.BEnd > op.BStart {
				runs = append(runs, symbolRun{op: Insert, symbols: sym2[op.BStart:op.BEnd]})
			}
		}
	}
	return runs
}

// normalizeRuns merges adjacent runs of the same operation and orders every
// change block between two Equal runs as its deletes followed by its inserts.
func normalizeRuns(runs []symbolRun) []symbolRun {
	var result []symbolRun
	var deletes, inserts []rune

	flush := func() {
		if len(deletes) > 0 {
			result = append(result, symbolRun{op: Delete, symbols: deletes})
			deletes = nil
		}
		if len(inserts) > 0 {
			result = append(result, symbolRun{op: Insert, symbols: inserts})
			inserts = nil
		}
	}

	for _, r := range runs {
		switch r.op {
		case Delete:
			deletes = append(deletes, r.symbols...)
		case Insert:
			inserts = append(inserts, r.symbols...)
		default:
			flush()
			if n := len(result); n > 0 && result[n-1].op == Equal {
				merged := append(append([]rune{}, result[n-1].symbols...), r.symbols...)
				result[n-1].symbols = merged
				continue
			}
			result = append(result, symbolRun{op: Equal, symbols: r.symbols})
		}
	}
	flush()

	return result
}

// decodeRuns converts symbol runs back to text through the table.
func decodeRuns(runs []symbolRun, table *SymbolTable) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		text, tokens := table.Decode(string(r.symbols))
		out = append(out, Run{Op: r.op, Text: text, Tokens: tokens})
	}
	return out
}
