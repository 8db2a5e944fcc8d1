package revdiff

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/fragments.html"))

// HTMLOptions configures RenderHTML.
type HTMLOptions struct {
	Header1 string
	Header2 string
}

type htmlPage struct {
	Header1     string
	Header2     string
	NumEdits    int
	Paragraphs1 []template.HTML
	Paragraphs2 []template.HTML
}

// RenderHTML writes a two-column page showing doc1 and doc2 with their edits
// highlighted. The sentences of each aligned group are wrapped in hover spans
// sharing the group ID on both sides.
func RenderHTML(w io.Writer, doc1, doc2 *Document, res *Result, opts HTMLOptions) error {
	frags1 := make(map[int]template.HTML)
	frags2 := make(map[int]template.HTML)

	for _, g := range res.Groups {
		side1, err := renderSide(g.Edits, 1)
		if err != nil {
			return err
		}
		side2, err := renderSide(g.Edits, 2)
		if err != nil {
			return err
		}
		if err := placeGroup(frags1, g.ID, g.Source, side1); err != nil {
			return err
		}
		if err := placeGroup(frags2, g.ID, g.Target, side2); err != nil {
			return err
		}
	}
	for _, s := range res.Deleted {
		h, err := executeFragment("edit", editFragment{Class: Deletion.String(), Text: doc1.Sentences[s].Text})
		if err != nil {
			return err
		}
		frags1[s] = h
	}
	for _, t := range res.Inserted {
		h, err := executeFragment("edit", editFragment{Class: Insertion.String(), Text: doc2.Sentences[t].Text})
		if err != nil {
			return err
		}
		frags2[t] = h
	}

	page := htmlPage{
		Header1:     opts.Header1,
		Header2:     opts.Header2,
		NumEdits:    res.NumEdits,
		Paragraphs1: assembleParagraphs(doc1, frags1),
		Paragraphs2: assembleParagraphs(doc2, frags2),
	}
	if err := pageTemplate.ExecuteTemplate(w, "base.html", page); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

type editFragment struct {
	Class string
	Text  string
}

type hoverFragment struct {
	ID   string
	Body template.HTML
}

func executeFragment(name string, data any) (template.HTML, error) {
	var sb strings.Builder
	if err := pageTemplate.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(sb.String()), nil
}

// renderSide renders the edits of a group as seen from one document.
func renderSide(edits []Edit, side int) (template.HTML, error) {
	var parts []string
	for _, e := range edits {
		text := e.Text1
		if side == 2 {
			text = e.Text2
		}
		switch {
		case e.Type == Same:
			parts = append(parts, template.HTMLEscapeString(text))
		case e.Type == Substitution,
			e.Type == Deletion && side == 1,
			e.Type == Insertion && side == 2:
			h, err := executeFragment("edit", editFragment{Class: e.Type.String(), Text: text})
			if err != nil {
				return "", err
			}
			parts = append(parts, string(h))
		}
	}
	return template.HTML(strings.Join(parts, " ")), nil
}

// placeGroup stores the group markup at its first sentence and marks the
// other sentences of the group as rendered.
func placeGroup(frags map[int]template.HTML, id string, sentences []int, body template.HTML) error {
	if len(sentences) == 0 {
		return nil
	}
	h, err := executeFragment("hover", hoverFragment{ID: id, Body: body})
	if err != nil {
		return err
	}
	frags[sentences[0]] = h
	for _, s := range sentences[1:] {
		frags[s] = ""
	}
	return nil
}

func assembleParagraphs(doc *Document, frags map[int]template.HTML) []template.HTML {
	var out []template.HTML
	for p := range doc.Paragraphs {
		var parts []string
		for _, s := range doc.ParagraphSentences(p) {
			if h := frags[s]; h != "" {
				parts = append(parts, string(h))
			}
		}
		if len(parts) > 0 {
			out = append(out, template.HTML(strings.Join(parts, " ")))
		}
	}
	if len(out) == 0 {
		out = []template.HTML{"Empty"}
	}
	return out
}
