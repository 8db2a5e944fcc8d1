package revdiff

import (
	"reflect"
	"testing"
)

func TestBuildOffsetTable(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		spans      [][]Span
		expected   []Span
	}{
		{
			name:       "single paragraph",
			paragraphs: []string{"One. Two."},
			spans:      [][]Span{{{0, 4}, {5, 9}}},
			expected:   []Span{{0, 4}, {5, 9}},
		},
		{
			name:       "two paragraphs",
			paragraphs: []string{"One. Two.", "Three."},
			spans:      [][]Span{{{0, 4}, {5, 9}}, {{0, 6}}},
			expected:   []Span{{0, 4}, {5, 9}, {10, 16}},
		},
		{
			name:       "empty paragraph in between",
			paragraphs: []string{"One.", "", "Two."},
			spans:      [][]Span{{{0, 4}}, nil, {{0, 4}}},
			expected:   []Span{{0, 4}, NoSpan, {6, 10}},
		},
		{
			name:       "whitespace only paragraph",
			paragraphs: []string{"One.", " ", "Two."},
			spans:      [][]Span{{{0, 4}}, nil, {{0, 4}}},
			expected:   []Span{{0, 4}, NoSpan, {7, 11}},
		},
		{
			name:       "trailing whitespace",
			paragraphs: []string{"One.  ", "Two."},
			spans:      [][]Span{{{0, 4}}, {{0, 4}}},
			expected:   []Span{{0, 4}, {7, 11}},
		},
		{
			name:       "leading whitespace stays in the local span",
			paragraphs: []string{"One.", "  Two."},
			spans:      [][]Span{{{0, 4}}, {{2, 6}}},
			expected:   []Span{{0, 4}, {7, 11}},
		},
		{
			name:       "only empty paragraphs",
			paragraphs: []string{"", ""},
			spans:      [][]Span{nil, nil},
			expected:   []Span{NoSpan, NoSpan},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := BuildOffsetTable(tt.paragraphs, tt.spans)
			if !reflect.DeepEqual(table, tt.expected) {
				t.Errorf("BuildOffsetTable() = %v, want %v", table, tt.expected)
			}
			if i := CheckOffsetTable(table); i != -1 {
				t.Errorf("CheckOffsetTable() = %d, want -1", i)
			}
		})
	}
}

func TestBuildOffsetTableMatchesContent(t *testing.T) {
	paragraphs := []string{"First sentence. Second one.", "", "Third  ", "Fourth."}
	spans := [][]Span{{{0, 15}, {16, 27}}, nil, {{0, 5}}, {{0, 7}}}
	content := "First sentence. Second one.\n\nThird  \nFourth."

	want := []string{"First sentence.", "Second one.", "", "Third", "Fourth."}
	for i, s := range BuildOffsetTable(paragraphs, spans) {
		got := ""
		if s.Valid() {
			got = content[s.Start:s.End]
		}
		if got != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestCheckOffsetTable(t *testing.T) {
	tests := []struct {
		name     string
		table    []Span
		expected int
	}{
		{"empty", nil, -1},
		{"ordered with sentinel", []Span{{0, 3}, NoSpan, {5, 9}}, -1},
		{"out of order", []Span{{5, 9}, {0, 3}}, 1},
		{"empty span", []Span{{0, 3}, {4, 4}}, 1},
		{"malformed", []Span{{3, 1}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckOffsetTable(tt.table); got != tt.expected {
				t.Errorf("CheckOffsetTable() = %d, want %d", got, tt.expected)
			}
		})
	}
}
