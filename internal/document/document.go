package document

import "strings"

// Fragment is the text extracted from a single page or section.
// Text may be empty: an empty extraction is still a fragment and
// participates in joining.
type Fragment struct {
	Page int    // 1-based source page (0 if the format has no pages)
	Text string
}

// Document is the parsed form of an input file, ready for speech.
type Document struct {
	Title     string     // From metadata or filename.
	PageCount int        // Total pages in the source (0 if N/A).
	Fragments []Fragment // Page order; failed pages are absent.

	// SkippedPages counts pages whose extraction failed and was
	// suppressed. Diagnostic only, never affects control flow.
	SkippedPages int
}

// Append adds a fragment, preserving insertion order.
func (d *Document) Append(page int, text string) {
	d.Fragments = append(d.Fragments, Fragment{Page: page, Text: text})
}

// JoinedText returns all fragment texts joined with a single space,
// in page order. Empty fragments still contribute a separator.
func (d *Document) JoinedText() string {
	parts := make([]string, len(d.Fragments))
	for i, f := range d.Fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

// SpokenText is the joined text with leading and trailing whitespace
// trimmed. It is both the emptiness-check input and the text that gets
// synthesized.
func (d *Document) SpokenText() string {
	return strings.TrimSpace(d.JoinedText())
}

// HasText reports whether the document yielded any speakable text.
func (d *Document) HasText() bool {
	return d.SpokenText() != ""
}
