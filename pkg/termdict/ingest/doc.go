package ingest

import "strings"

// Doc is one PDF after extraction and cleaning.
type Doc struct {
	Name       string // file name relative to the input directory
	Path       string
	TotalPages int
	PagesRead  int
	Text       string // cleaned page texts, each followed by a space
}

// Empty reports whether no usable text was extracted.
func (d *Doc) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Combine joins document texts with a single space, in order.
func Combine(docs []Doc) string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	return strings.Join(texts, " ")
}
