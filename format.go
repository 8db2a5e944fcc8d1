package revdiff

import (
	"fmt"
	"strings"
)

// FormatOptions configures the text view of edits. DefaultFormatOptions
// gives the [-deleted-] and {+inserted+} markers.
type FormatOptions struct {
	// Markers wrapped around deleted and inserted text when neither color nor
	// overstrike is in use.
	StartDelete, StopDelete string
	StartInsert, StopInsert string

	// Suppress deleted, inserted or unchanged text.
	NoDeleted  bool
	NoInserted bool
	NoCommon   bool

	// UseColor replaces the markers with DeleteColor and InsertColor, each
	// closed by ColorReset.
	UseColor    bool
	DeleteColor string
	InsertColor string
	ColorReset  string

	// LessMode and PrinterMode underline deleted text and embolden inserted
	// text with overstrike sequences. Either one takes precedence over color.
	LessMode    bool
	PrinterMode bool
}

const (
	ANSIReset       = "\033[0m"
	ANSIDeleteColor = "\033[0;31;1m" // bold red
	ANSIInsertColor = "\033[0;32;1m" // bold green
)

// ForegroundColors maps color names to ANSI foreground escape codes.
var ForegroundColors = map[string]string{
	"black":         "\033[30m",
	"red":           "\033[31m",
	"green":         "\033[32m",
	"yellow":        "\033[33m",
	"blue":          "\033[34m",
	"magenta":       "\033[35m",
	"cyan":          "\033[36m",
	"white":         "\033[37m",
	"brightblack":   "\033[90m",
	"brightred":     "\033[91m",
	"brightgreen":   "\033[92m",
	"brightyellow":  "\033[93m",
	"brightblue":    "\033[94m",
	"brightmagenta": "\033[95m",
	"brightcyan":    "\033[96m",
	"brightwhite":   "\033[97m",
}

// BackgroundColors maps color names to ANSI background escape codes.
var BackgroundColors = map[string]string{
	"black":         "\033[40m",
	"red":           "\033[41m",
	"green":         "\033[42m",
	"yellow":        "\033[43m",
	"blue":          "\033[44m",
	"magenta":       "\033[45m",
	"cyan":          "\033[46m",
	"white":         "\033[47m",
	"brightblack":   "\033[100m",
	"brightred":     "\033[101m",
	"brightgreen":   "\033[102m",
	"brightyellow":  "\033[103m",
	"brightblue":    "\033[104m",
	"brightmagenta": "\033[105m",
	"brightcyan":    "\033[106m",
	"brightwhite":   "\033[107m",
}

// ColorNames lists the names accepted by ParseColor in display order.
func ColorNames() []string {
	return []string{
		"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
		"brightblack", "brightred", "brightgreen", "brightyellow",
		"brightblue", "brightmagenta", "brightcyan", "brightwhite",
	}
}

// ParseColor parses "fg" or "fg:bg" into an ANSI escape sequence. The empty
// string means no color.
func ParseColor(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", nil
	}

	fgName, bgName, hasBg := strings.Cut(spec, ":")
	fgName = strings.ToLower(strings.TrimSpace(fgName))

	var code string
	if fgName != "" {
		fg, ok := ForegroundColors[fgName]
		if !ok {
			return "", fmt.Errorf("unknown color: %s", fgName)
		}
		code = fg
	}
	if hasBg {
		bgName = strings.ToLower(strings.TrimSpace(bgName))
		if bgName != "" {
			bg, ok := BackgroundColors[bgName]
			if !ok {
				return "", fmt.Errorf("unknown background color: %s", bgName)
			}
			code += bg
		}
	}
	return code, nil
}

// ParseColorSpec parses "delete_color,insert_color" where each color is
// "fg" or "fg:bg". If only one color is given, insertions keep bold green.
func ParseColorSpec(spec string) (deleteColor, insertColor string, err error) {
	del, ins, hasIns := strings.Cut(spec, ",")

	deleteColor, err = ParseColor(del)
	if err != nil {
		return "", "", fmt.Errorf("delete color: %w", err)
	}

	insertColor = ANSIInsertColor
	if hasIns {
		insertColor, err = ParseColor(ins)
		if err != nil {
			return "", "", fmt.Errorf("insert color: %w", err)
		}
	}
	return deleteColor, insertColor, nil
}

// DefaultFormatOptions returns marker output with bold red and green as the
// color pair.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		StartDelete: "[-",
		StopDelete:  "-]",
		StartInsert: "{+",
		StopInsert:  "+}",
		DeleteColor: ANSIDeleteColor,
		InsertColor: ANSIInsertColor,
		ColorReset:  ANSIReset,
	}
}

// OverstrikeUnderline prefixes every rune of text with "_\b".
func OverstrikeUnderline(text string) string {
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune('_')
		sb.WriteRune('\b')
		sb.WriteRune(r)
	}
	return sb.String()
}

// OverstrikeBold writes every rune of text, a backspace, then the rune again.
func OverstrikeBold(text string) string {
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		sb.WriteRune('\b')
		sb.WriteRune(r)
	}
	return sb.String()
}

func (o FormatOptions) deleted(text string) string {
	switch {
	case o.NoDeleted || text == "":
		return ""
	case o.LessMode || o.PrinterMode:
		return OverstrikeUnderline(text)
	case o.UseColor:
		return o.DeleteColor + text + o.reset()
	}
	return o.StartDelete + text + o.StopDelete
}

func (o FormatOptions) inserted(text string) string {
	switch {
	case o.NoInserted || text == "":
		return ""
	case o.LessMode || o.PrinterMode:
		return OverstrikeBold(text)
	case o.UseColor:
		return o.InsertColor + text + o.reset()
	}
	return o.StartInsert + text + o.StopInsert
}

func (o FormatOptions) reset() string {
	if o.ColorReset == "" {
		return ANSIReset
	}
	return o.ColorReset
}

// FormatEdits renders edit records on one line. Deleted text is wrapped in
// [-...-] and inserted text in {+...+}; a substitution shows both, adjacent.
func FormatEdits(edits []Edit, opts FormatOptions) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	for _, e := range edits {
		switch e.Type {
		case Same:
			if !opts.NoCommon {
				add(e.Text1)
			}
		case Deletion:
			add(opts.deleted(e.Text1))
		case Insertion:
			add(opts.inserted(e.Text2))
		case Substitution:
			add(opts.deleted(e.Text1) + opts.inserted(e.Text2))
		}
	}
	return strings.Join(parts, " ")
}

// FormatResult renders a comparison with one line per aligned group. Deleted
// and inserted sentences get lines of their own, placed before the first
// group that follows them.
func FormatResult(doc1, doc2 *Document, res *Result, opts FormatOptions) string {
	var lines []string
	del, ins := 0, 0

	pending := func(source, target int) {
		for ; del < len(res.Deleted) && res.Deleted[del] < source; del++ {
			if line := opts.deleted(doc1.Sentences[res.Deleted[del]].Text); line != "" {
				lines = append(lines, line)
			}
		}
		for ; ins < len(res.Inserted) && res.Inserted[ins] < target; ins++ {
			if line := opts.inserted(doc2.Sentences[res.Inserted[ins]].Text); line != "" {
				lines = append(lines, line)
			}
		}
	}

	for _, g := range res.Groups {
		pending(g.Source[0], g.Target[0])
		if line := FormatEdits(g.Edits, opts); line != "" {
			lines = append(lines, line)
		}
	}
	pending(doc1.NumSentences(), doc2.NumSentences())

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
