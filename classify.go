package revdiff

import "strings"

// Compensation maps a marker string to the number of bytes each of its
// occurrences over-counts in a token span. Some normalizations (for example
// PTB-style quotes, where one source quote becomes the two character token
// `` or '') make the token text longer than the text the span was measured
// on; the excess is subtracted from the end of the covering span.
type Compensation map[string]int

// DefaultCompensation corrects for the two double-quote normalization markers.
var DefaultCompensation = Compensation{
	"``": 1,
	"''": 1,
}

// drift returns the total over-count for text.
func (c Compensation) drift(text string) int {
	total := 0
	for marker, n := range c {
		if marker == "" {
			continue
		}
		total += strings.Count(text, marker) * n
	}
	return total
}

// Classify turns the runs of a word diff into edit records.
//
// A Delete run immediately followed by an Insert run becomes one Substitution.
// Every record consumes exactly as many spans from the front of the offset
// lists as its runs consumed tokens; the covering span runs from the first
// consumed start to the last consumed end, less the compensation drift.
// A side without a range, or one whose offsets ran out, gets NoSpan.
//
// Text1 and Text2 hold the run text without the trailing boundary.
func Classify(d WordDiff, comp Compensation) []Edit {
	m := classifier{
		offsets1: d.Offsets1,
		offsets2: d.Offsets2,
		comp:     comp,
	}
	for _, r := range d.Runs {
		m.feed(r)
	}
	m.finish()
	return m.edits
}

type classifyState int

const (
	stateScanning classifyState = iota
	statePendingDelete
	stateEmitSubstitution
)

// classifier is the lookahead state machine behind Classify.
type classifier struct {
	state   classifyState
	pending Run // delete run held in statePendingDelete and stateEmitSubstitution
	insert  Run // insert run held in stateEmitSubstitution

	offsets1 []Span
	offsets2 []Span
	comp     Compensation

	edits []Edit
}

func (m *classifier) feed(r Run) {
	if m.state == stateEmitSubstitution {
		m.flush()
	}

	switch m.state {
	case stateScanning:
		if r.Op == Delete {
			m.pending = r
			m.state = statePendingDelete
			return
		}
		m.single(r)

	case statePendingDelete:
		if r.Op == Insert {
			m.insert = r
			m.state = stateEmitSubstitution
			return
		}
		m.flush()
		m.feed(r)
	}
}

// flush emits whatever the current state holds and returns to scanning.
func (m *classifier) flush() {
	switch m.state {
	case statePendingDelete:
		m.single(m.pending)
	case stateEmitSubstitution:
		del, ins := m.pending, m.insert
		m.edits = append(m.edits, Edit{
			Type:    Substitution,
			Offset1: m.consume(&m.offsets1, del.Tokens, del.Text),
			Offset2: m.consume(&m.offsets2, ins.Tokens, ins.Text),
			Text1:   trimBoundary(del.Text),
			Text2:   trimBoundary(ins.Text),
		})
	}
	m.pending = Run{}
	m.insert = Run{}
	m.state = stateScanning
}

func (m *classifier) finish() {
	m.flush()
}

// single emits the record for a run that is not part of a substitution.
func (m *classifier) single(r Run) {
	text := trimBoundary(r.Text)
	switch r.Op {
	case Delete:
		m.edits = append(m.edits, Edit{
			Type:    Deletion,
			Offset1: m.consume(&m.offsets1, r.Tokens, r.Text),
			Offset2: NoSpan,
			Text1:   text,
		})
	case Insert:
		m.edits = append(m.edits, Edit{
			Type:    Insertion,
			Offset1: NoSpan,
			Offset2: m.consume(&m.offsets2, r.Tokens, r.Text),
			Text2:   text,
		})
	default:
		m.edits = append(m.edits, Edit{
			Type:    Same,
			Offset1: m.consume(&m.offsets1, r.Tokens, r.Text),
			Offset2: m.consume(&m.offsets2, r.Tokens, r.Text),
			Text1:   text,
			Text2:   text,
		})
	}
}

// consume takes n spans from the front of list and returns their cover.
func (m *classifier) consume(list *[]Span, n int, text string) Span {
	avail := *list
	if n <= 0 {
		return NoSpan
	}
	if n > len(avail) {
		*list = nil
		return NoSpan
	}
	*list = avail[n:]

	span := Span{Start: avail[0].Start, End: avail[n-1].End}
	if !avail[0].Valid() || !avail[n-1].Valid() {
		return NoSpan
	}
	span.End -= m.comp.drift(text)
	if span.End < span.Start {
		span.End = span.Start
	}
	return span
}

func trimBoundary(text string) string {
	return strings.TrimSuffix(text, boundary)
}
