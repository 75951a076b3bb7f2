package glossary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Output formats.
const (
	FormatText = "txt"
	FormatHTML = "html"
)

// Writer renders a term list.
type Writer struct {
	Label  string
	Header []string // optional comment lines written before the entries
	Format string   // FormatText (default) or FormatHTML
}

// WriteFile writes terms to path, creating the parent directory and
// replacing any existing file.
func (w Writer) WriteFile(path string, terms []Term) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := w.Write(bw, terms); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders terms to out in the configured format.
func (w Writer) Write(out io.Writer, terms []Term) error {
	if w.Format == FormatHTML {
		return html.Render(out, w.document(terms))
	}
	return w.writeText(out, terms)
}

// FormatLine renders one entry as "phrase :: label (confidence:0.00)".
func FormatLine(t Term, label string) string {
	return fmt.Sprintf("%s :: %s (confidence:%.2f)", t.Phrase, label, t.Score)
}

func (w Writer) writeText(out io.Writer, terms []Term) error {
	for _, h := range w.Header {
		if _, err := fmt.Fprintf(out, "# %s\n", h); err != nil {
			return err
		}
	}
	if len(w.Header) > 0 {
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}
	for _, t := range terms {
		if _, err := io.WriteString(out, FormatLine(t, w.Label)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (w Writer) document(terms []Term) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	title := "Glossary"
	if len(w.Header) > 0 {
		title = w.Header[0]
	}
	head.AppendChild(withText(element(atom.Title), title))

	body := element(atom.Body)
	root.AppendChild(body)
	for _, h := range w.Header {
		body.AppendChild(withText(element(atom.P), h))
	}

	table := element(atom.Table)
	body.AppendChild(table)
	thead := element(atom.Thead)
	table.AppendChild(thead)
	headRow := element(atom.Tr)
	thead.AppendChild(headRow)
	for _, col := range []string{"Term", "Label", "Confidence"} {
		headRow.AppendChild(withText(element(atom.Th), col))
	}

	tbody := element(atom.Tbody)
	table.AppendChild(tbody)
	for _, t := range terms {
		tr := element(atom.Tr)
		tr.AppendChild(withText(element(atom.Td), t.Phrase))
		tr.AppendChild(withText(element(atom.Td), w.Label))
		tr.AppendChild(withText(element(atom.Td), strconv.FormatFloat(t.Score, 'f', 2, 64)))
		tbody.AppendChild(tr)
	}
	return doc
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
