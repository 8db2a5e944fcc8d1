package revdiff

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	quoteReplacer = strings.NewReplacer(
		"``", `"`,
		"''", `"`,
		"“", `"`, // left double quotation mark
		"”", `"`, // right double quotation mark
		"„", `"`,
		"‟", `"`,
		"«", `"`,
		"»", `"`,
		"‘", "'", // left single quotation mark
		"’", "'", // right single quotation mark
		"‚", "'",
		"‛", "'",
		"‹", "'",
		"›", "'",
	)

	hyphenatedWord = regexp.MustCompile(`(\pL{2,})-\s+(\pL{2,})`)
	zeroWidth      = regexp.MustCompile(`[\x{200B}\x{2060}\x{FEFF}]+`)
	lineBreaks     = regexp.MustCompile(`(\r\n|[\r\n\v])+`)
	spaceRuns      = regexp.MustCompile(`[\t\f\p{Zs}]+`)
)

// Normalize prepares a document text for comparison. It applies compatibility
// decomposition, folds typographic quotes to ASCII, rejoins words hyphenated
// across whitespace, collapses line breaks and horizontal whitespace, removes
// accents and trims the ends.
//
// All offsets reported by this package refer to the normalized text.
func Normalize(text string) string {
	text = norm.NFKD.String(text)
	text = quoteReplacer.Replace(text)
	text = hyphenatedWord.ReplaceAllString(text, "$1$2")
	text = zeroWidth.ReplaceAllString(text, "")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = removeAccents(text)
	return strings.TrimSpace(text)
}

// removeAccents drops combining marks.
func removeAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
