package ingest

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/cognicore/termdict/pkg/termdict/internalerr"
)

// PDFOpener opens PDF files with github.com/ledongthuc/pdf.
type PDFOpener struct {
	// SniffContent rejects files whose content is not a PDF before parsing.
	SniffContent bool
}

// Compile-time interface check.
var _ Opener = PDFOpener{}

// Open implements Opener.
func (o PDFOpener) Open(path string) (Document, error) {
	if o.SniffContent {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, err
		}
		if !mt.Is("application/pdf") {
			return nil, fmt.Errorf("%w: detected %s", internalerr.ErrNotPDF, mt.String())
		}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &pdfDocument{file: f, reader: r}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *pdfDocument) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of page i. The parser panics on some
// malformed content streams; that is reported as an error for the page.
func (d *pdfDocument) PageText(i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extract page text: %v", rec)
		}
	}()

	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}
