package revdiff

import (
	"math"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// Similarity scores how alike two texts are, from 0.0 (unrelated) to 1.0
// (identical). Implementations must be safe for concurrent use.
type Similarity interface {
	Similarity(a, b string) float64
}

// SimilarityFunc adapts a function to the Similarity interface.
type SimilarityFunc func(a, b string) float64

// Similarity calls f(a, b).
func (f SimilarityFunc) Similarity(a, b string) float64 { return f(a, b) }

// TFIDFModel scores texts by the cosine of their tf-idf weighted word vectors.
// Document frequencies come from the corpus the model was built on; a word
// never seen there gets the highest idf.
type TFIDFModel struct {
	idf       map[string]float64
	unseen    float64
	stopWords map[string]bool
}

// NewTFIDFModel builds a model from corpus, one entry per document unit
// (typically every sentence of both versions). Stop words are ignored when
// counting and scoring; they are matched case-insensitively.
func NewTFIDFModel(corpus []string, stopWords []string) *TFIDFModel {
	m := &TFIDFModel{
		idf:       make(map[string]float64),
		stopWords: make(map[string]bool, len(stopWords)),
	}
	for _, w := range stopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			m.stopWords[w] = true
		}
	}

	df := make(map[string]int)
	for _, text := range corpus {
		for term := range m.termCounts(text) {
			df[term]++
		}
	}

	n := float64(len(corpus))
	for term, count := range df {
		m.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	m.unseen = math.Log(1+n) + 1
	return m
}

// Similarity implements Similarity.
func (m *TFIDFModel) Similarity(a, b string) float64 {
	va := m.vector(a)
	vb := m.vector(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}

	var dot, na, nb float64
	for term, wa := range va {
		na += wa * wa
		if wb, ok := vb[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range vb {
		nb += wb * wb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Min(1, dot/(math.Sqrt(na)*math.Sqrt(nb)))
}

func (m *TFIDFModel) vector(text string) map[string]float64 {
	counts := m.termCounts(text)
	v := make(map[string]float64, len(counts))
	for term, tf := range counts {
		idf, ok := m.idf[term]
		if !ok {
			idf = m.unseen
		}
		v[term] = float64(tf) * idf
	}
	return v
}

// termCounts lower-cases the words of text and counts them, skipping stop
// words and tokens without a letter or digit.
func (m *TFIDFModel) termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, t := range (WordTokenizer{}).Tokenize(text) {
		if strings.IndexFunc(t.Text, isWordRune) < 0 {
			continue
		}
		term := strings.ToLower(t.Text)
		if m.stopWords[term] {
			continue
		}
		counts[term]++
	}
	return counts
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TokenSimilarity scores two texts by the share of their tokens that the
// word diff leaves unchanged.
type TokenSimilarity struct {
	Options Options
}

// Similarity implements Similarity.
func (ts TokenSimilarity) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	d := DiffWords(a, b, ts.Options)
	if len(d.Offsets1) == 0 || len(d.Offsets2) == 0 {
		return 0.0
	}

	st := ComputeStatistics(d)
	total := st.CommonWords + st.DeletedWords + st.InsertedWords
	if total == 0 {
		return 0.0
	}
	return float64(st.CommonWords) / float64(total)
}

// JaroWinklerSimilarity scores two texts with the Jaro-Winkler string
// similarity over their lower-cased characters.
type JaroWinklerSimilarity struct{}

// Similarity implements Similarity.
func (JaroWinklerSimilarity) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		if a == b {
			return 1.0
		}
		return 0.0
	}
	return matchr.JaroWinkler(strings.ToLower(a), strings.ToLower(b), false)
}

// Corpus returns the sentence texts of the given documents, skipping
// placeholders. It is the usual input for NewTFIDFModel.
func Corpus(docs ...*Document) []string {
	var out []string
	for _, d := range docs {
		for _, s := range d.Sentences {
			if s.Text != "" {
				out = append(out, s.Text)
			}
		}
	}
	return out
}
