package revdiff

import (
	"context"
	"fmt"
	"strings"
)

// Default alignment thresholds.
const (
	DefaultMinParagraphSim = 0.35
	DefaultMinSentenceSim  = 0.4
	DefaultSimSlack        = 0.04
	DefaultWindow          = 3
)

// Alignment pairs one or more consecutive source items with one or more
// consecutive target items. Indexes are local to the lists that were aligned.
type Alignment struct {
	Source []int
	Target []int
}

// Aligner groups paragraphs and sentences of two versions. Items left out of
// every alignment are reported by the caller as deleted or inserted.
type Aligner interface {
	// AlignParagraphs aligns paragraphs given as their sentence lists.
	AlignParagraphs(ctx context.Context, p1, p2 [][]string) ([]Alignment, error)
	// AlignSentences aligns the sentences of one group of aligned paragraphs.
	AlignSentences(ctx context.Context, s1, s2 []string) ([]Alignment, error)
}

// VicinityAligner walks both lists in order. At each position it looks for
// the nearest pair within a Window x Window vicinity that scores at least the
// threshold, then greedily grows the pair into a 1-N or N-1 alignment for as
// long as each added item costs no more than Slack similarity.
type VicinityAligner struct {
	// Similarity scores items. If nil, TokenSimilarity is used.
	Similarity Similarity

	MinParagraphSim float64
	MinSentenceSim  float64
	Slack           float64

	// Window is the vicinity size. Values below 1 select DefaultWindow.
	Window int
}

// NewVicinityAligner returns an aligner using sim and the default thresholds.
func NewVicinityAligner(sim Similarity) *VicinityAligner {
	return &VicinityAligner{
		Similarity:      sim,
		MinParagraphSim: DefaultMinParagraphSim,
		MinSentenceSim:  DefaultMinSentenceSim,
		Slack:           DefaultSimSlack,
		Window:          DefaultWindow,
	}
}

// AlignParagraphs implements Aligner.
func (va *VicinityAligner) AlignParagraphs(ctx context.Context, p1, p2 [][]string) ([]Alignment, error) {
	a, err := va.align(ctx, joinParagraphs(p1), joinParagraphs(p2), va.MinParagraphSim)
	if err != nil {
		return nil, fmt.Errorf("align paragraphs: %w", err)
	}
	return a, nil
}

// AlignSentences implements Aligner.
func (va *VicinityAligner) AlignSentences(ctx context.Context, s1, s2 []string) ([]Alignment, error) {
	a, err := va.align(ctx, s1, s2, va.MinSentenceSim)
	if err != nil {
		return nil, fmt.Errorf("align sentences: %w", err)
	}
	return a, nil
}

func joinParagraphs(paragraphs [][]string) []string {
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = strings.Join(p, " ")
	}
	return out
}

func (va *VicinityAligner) similarity() Similarity {
	if va.Similarity == nil {
		return TokenSimilarity{}
	}
	return va.Similarity
}

func (va *VicinityAligner) window() int {
	if va.Window < 1 {
		return DefaultWindow
	}
	return va.Window
}

func (va *VicinityAligner) align(ctx context.Context, items1, items2 []string, threshold float64) ([]Alignment, error) {
	sim := va.similarity()
	window := va.window()

	score := func(a, b string) float64 {
		if isBlank(a) || isBlank(b) {
			return 0
		}
		return sim.Similarity(a, b)
	}
	accept := func(s float64) bool {
		return s > 0 && s >= threshold
	}

	var out []Alignment
	i, j := 0, 0
	for i < len(items1) && j < len(items2) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bi, bj, best := va.nearestPair(items1, items2, i, j, window, score, accept)
		if bi < 0 {
			i++
			j++
			continue
		}

		src, tgt := va.grow(items1, items2, bi, bj, best, window, score, accept)
		out = append(out, Alignment{Source: src, Target: tgt})
		i = src[len(src)-1] + 1
		j = tgt[len(tgt)-1] + 1
	}
	return out, nil
}

// nearestPair scans the vicinity of (i, j) by increasing distance and returns
// the best accepted pair at the first distance that has one.
func (va *VicinityAligner) nearestPair(items1, items2 []string, i, j, window int,
	score func(a, b string) float64, accept func(float64) bool) (int, int, float64) {

	for dist := 0; dist <= 2*(window-1); dist++ {
		bi, bj, best := -1, -1, 0.0
		for di := 0; di < window && di <= dist; di++ {
			dj := dist - di
			if dj >= window || i+di >= len(items1) || j+dj >= len(items2) {
				continue
			}
			s := score(items1[i+di], items2[j+dj])
			if accept(s) && s > best {
				bi, bj, best = i+di, j+dj, s
			}
		}
		if bi >= 0 {
			return bi, bj, best
		}
	}
	return -1, -1, 0
}

// grow extends the pair (a, b) on one side. An item is added when the merged
// score stays within Slack of the current score and the item is not a better
// match for the next item of the other side.
func (va *VicinityAligner) grow(items1, items2 []string, a, b int, base float64, window int,
	score func(a, b string) float64, accept func(float64) bool) ([]int, []int) {

	extend := func(fixed string, next string, pool []string, start int) ([]int, float64) {
		merged := []string{pool[start]}
		current := base
		idx := []int{start}
		for k := start + 1; k < len(pool) && k < start+window; k++ {
			if isBlank(pool[k]) {
				break
			}
			if next != "" && score(next, pool[k]) >= score(fixed, pool[k]) {
				break
			}
			candidate := score(fixed, strings.Join(append(merged, pool[k]), " "))
			if !accept(candidate) || candidate < current-va.Slack {
				break
			}
			merged = append(merged, pool[k])
			current = candidate
			idx = append(idx, k)
		}
		return idx, current
	}

	var next1, next2 string
	if a+1 < len(items1) {
		next1 = items1[a+1]
	}
	if b+1 < len(items2) {
		next2 = items2[b+1]
	}

	targets, tScore := extend(items1[a], next1, items2, b)
	sources, sScore := extend(items2[b], next2, items1, a)

	switch {
	case len(targets) > 1 && (len(sources) == 1 || tScore >= sScore):
		return []int{a}, targets
	case len(sources) > 1:
		return sources, []int{b}
	}
	return []int{a}, []int{b}
}
