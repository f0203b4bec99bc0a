package parser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dgallion1/docvoice/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts one text fragment per page. Extraction is
// best-effort: a page that fails to decode is skipped silently so a
// partially damaged document still produces partial audio.
type PDFParser struct{}

// ParseFile opens path directly. The file handle is released on every
// return path.
func (p *PDFParser) ParseFile(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("open %s: %w", path, ErrInputNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	reader, err := pdflib.NewReader(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %v: %w", path, err, ErrInvalidDocument)
	}

	doc := extractPages(reader, titleFromFilename(path))
	return doc, nil
}

// Parse reads from r. The library requires a ReaderAt plus a size, so
// the stream is spooled to a temp file first.
func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	tmp, err := os.CreateTemp("", "docvoice-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	reader, err := pdflib.NewReader(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %v: %w", filename, err, ErrInvalidDocument)
	}

	return extractPages(reader, titleFromFilename(filename)), nil
}

// extractPages walks pages 1..NumPage in order. Failed pages add
// nothing to the fragment list; empty extractions are kept as empty
// fragments.
func extractPages(r *pdflib.Reader, title string) *document.Document {
	doc := &document.Document{
		Title:     title,
		PageCount: r.NumPage(),
	}

	for i := 1; i <= doc.PageCount; i++ {
		text, ok := extractPage(r, i)
		if !ok {
			doc.SkippedPages++
			continue
		}
		doc.Append(i, text)
	}

	return doc
}

// extractPage pulls plain text from one page. The page decoder can
// both error and panic on malformed content streams; either way the
// page is reported as skipped.
func extractPage(r *pdflib.Reader, n int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return "", false
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return t, true
}
