package revdiff

import "strings"

// boundary separates words inside a chunk and terminates every chunk.
const boundary = " "

// Symbol space limits. Symbol indexes map to runes skipping the UTF-16
// surrogate block, so MaxSymbols is the number of valid code points above 0
// that are not surrogates.
const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF

	// MaxSymbols is the largest symbol index a table can assign.
	MaxSymbols = 0x10FFFF - (surrogateMax - surrogateMin + 1)

	// Text1SymbolLimit reserves two thirds of the symbol space for the first
	// text so that the second text always has room for its own chunks.
	Text1SymbolLimit = MaxSymbols * 2 / 3
)

// SymbolTable maps word chunks to runes so that a character-level diff can
// operate on whole words. A chunk is a token's text followed by one boundary
// space. The zero index is reserved and never assigned.
//
// One table is shared by both texts of a single diff call so identical chunks
// collapse to the same symbol. Tables must not be shared across diff calls.
type SymbolTable struct {
	chunks []string       // chunks[i] is the chunk text of symbol index i
	counts []int          // counts[i] is the number of tokens in chunks[i]
	index  map[string]int // chunk text -> symbol index
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		chunks: []string{""},
		counts: []int{0},
		index:  make(map[string]int),
	}
}

// Len returns the number of symbols assigned so far.
func (st *SymbolTable) Len() int {
	return len(st.chunks) - 1
}

// Encode converts tokens into one symbol per chunk and returns the spans of
// the tokens in order.
//
// When only one slot below limit is left, the remaining tokens are coalesced
// into a single terminal chunk, so a call adds at most limit-Len() symbols
// when the table starts below limit. limit is clamped to [1, MaxSymbols].
func (st *SymbolTable) Encode(tokens []Token, limit int) ([]rune, []Span) {
	if len(tokens) == 0 {
		return []rune{}, []Span{}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxSymbols {
		limit = MaxSymbols
	}

	symbols := make([]rune, 0, len(tokens))
	offsets := make([]Span, 0, len(tokens))
	for _, t := range tokens {
		offsets = append(offsets, t.Span)
	}

	for i := 0; i < len(tokens); i++ {
		chunk := tokens[i].Text + boundary
		if idx, ok := st.index[chunk]; ok {
			symbols = append(symbols, indexToSymbol(idx))
			continue
		}

		count := 1
		if st.Len() >= limit-1 && i < len(tokens)-1 {
			// Last slot: take everything that is left.
			var sb strings.Builder
			for _, rest := range tokens[i:] {
				sb.WriteString(rest.Text)
				sb.WriteString(boundary)
			}
			chunk = sb.String()
			count = len(tokens) - i
			i = len(tokens)
		}

		if idx, ok := st.index[chunk]; ok {
			symbols = append(symbols, indexToSymbol(idx))
			continue
		}
		st.chunks = append(st.chunks, chunk)
		st.counts = append(st.counts, count)
		idx := len(st.chunks) - 1
		st.index[chunk] = idx
		symbols = append(symbols, indexToSymbol(idx))
	}

	return symbols, offsets
}

// Chunk returns the chunk text for symbol r, or "" if r is unknown.
func (st *SymbolTable) Chunk(r rune) string {
	idx := symbolToIndex(r)
	if idx <= 0 || idx >= len(st.chunks) {
		return ""
	}
	return st.chunks[idx]
}

// Tokens returns the number of tokens represented by symbol r.
func (st *SymbolTable) Tokens(r rune) int {
	idx := symbolToIndex(r)
	if idx <= 0 || idx >= len(st.counts) {
		return 0
	}
	return st.counts[idx]
}

// Decode converts a string of symbols back to chunk text and reports how
// many tokens it covers.
func (st *SymbolTable) Decode(symbols string) (string, int) {
	var sb strings.Builder
	tokens := 0
	for _, r := range symbols {
		sb.WriteString(st.Chunk(r))
		tokens += st.Tokens(r)
	}
	return sb.String(), tokens
}

// indexToSymbol maps a symbol index to a rune outside the surrogate block.
func indexToSymbol(idx int) rune {
	if idx >= surrogateMin {
		idx += surrogateMax - surrogateMin + 1
	}
	return rune(idx)
}

// symbolToIndex is the inverse of indexToSymbol.
func symbolToIndex(r rune) int {
	idx := int(r)
	if idx > surrogateMax {
		idx -= surrogateMax - surrogateMin + 1
	} else if idx >= surrogateMin {
		return -1
	}
	return idx
}
