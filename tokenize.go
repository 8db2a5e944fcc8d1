package revdiff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// Token is a word-like unit with its byte range in the text it was taken from.
type Token struct {
	Text string
	Span Span
}

// Tokenizer splits text into word tokens with offsets local to text.
// Implementations must be deterministic.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// Segmenter splits a paragraph into sentences. Each returned token is one
// sentence with its span local to the paragraph.
type Segmenter interface {
	Segment(paragraph string) []Token
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) []Token

// Tokenize calls f(text).
func (f TokenizerFunc) Tokenize(text string) []Token { return f(text) }

// SegmenterFunc adapts a function to the Segmenter interface.
type SegmenterFunc func(paragraph string) []Token

// Segment calls f(paragraph).
func (f SegmenterFunc) Segment(paragraph string) []Token { return f(paragraph) }

// WordTokenizer splits text on Unicode word boundaries (UAX #29).
// Whitespace segments are dropped; punctuation marks are kept as tokens of
// their own, so "deleted." yields "deleted" and ".".
type WordTokenizer struct{}

// Tokenize implements Tokenizer.
func (WordTokenizer) Tokenize(text string) []Token {
	var tokens []Token
	seg := words.FromString(text)
	for seg.Next() {
		value := seg.Value()
		if isBlank(value) {
			continue
		}
		tokens = append(tokens, Token{
			Text: value,
			Span: Span{Start: seg.Start(), End: seg.End()},
		})
	}
	return tokens
}

// FieldsTokenizer splits text on whitespace and treats delimiter characters
// as separate tokens even when they are not surrounded by whitespace.
type FieldsTokenizer struct {
	// Delimiters is the set of characters to treat as separate tokens.
	// This is ignored if UsePunctuation is true.
	Delimiters string

	// UsePunctuation, when true, uses Unicode punctuation characters as
	// delimiters instead of the Delimiters string.
	UsePunctuation bool
}

// Tokenize implements Tokenizer.
func (ft FieldsTokenizer) Tokenize(text string) []Token {
	var isDelimiter func(r rune) bool
	if ft.UsePunctuation {
		isDelimiter = unicode.IsPunct
	} else {
		delimSet := make(map[rune]bool)
		for _, r := range ft.Delimiters {
			delimSet[r] = true
		}
		isDelimiter = func(r rune) bool {
			return delimSet[r]
		}
	}

	var tokens []Token
	wordStart := -1

	flushWord := func(pos int) {
		if wordStart >= 0 {
			tokens = append(tokens, Token{Text: text[wordStart:pos], Span: Span{Start: wordStart, End: pos}})
			wordStart = -1
		}
	}

	i := 0
	for _, r := range text {
		runeLen := utf8.RuneLen(r)
		if runeLen < 0 {
			runeLen = 1
		}
		switch {
		case isDelimiter(r):
			flushWord(i)
			tokens = append(tokens, Token{Text: text[i : i+runeLen], Span: Span{Start: i, End: i + runeLen}})

		case unicode.IsSpace(r):
			flushWord(i)

		default:
			if wordStart == -1 {
				wordStart = i
			}
		}
		i += runeLen
	}

	flushWord(i)
	return tokens
}

// SentenceSegmenter splits paragraphs on Unicode sentence boundaries (UAX #29).
// Sentence spans exclude surrounding whitespace; whitespace-only segments are
// dropped.
type SentenceSegmenter struct{}

// Segment implements Segmenter.
func (SentenceSegmenter) Segment(paragraph string) []Token {
	var out []Token
	seg := sentences.FromString(paragraph)
	for seg.Next() {
		value := seg.Value()
		if isBlank(value) {
			continue
		}
		start := seg.Start() + (len(value) - len(strings.TrimLeftFunc(value, unicode.IsSpace)))
		end := seg.Start() + len(strings.TrimRightFunc(value, unicode.IsSpace))
		out = append(out, Token{
			Text: paragraph[start:end],
			Span: Span{Start: start, End: end},
		})
	}
	return out
}

// ShiftTokens returns a copy of tokens with every span moved by delta bytes.
func ShiftTokens(tokens []Token, delta int) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = Token{Text: t.Text, Span: t.Span.Shift(delta)}
	}
	return out
}

// isBlank returns true if s is empty or contains only whitespace.
func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
