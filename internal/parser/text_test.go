package parser

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphsBecomeFragments(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if len(doc.Fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(doc.Fragments))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if doc.Fragments[i].Text != w {
			t.Errorf("fragment[%d]: expected %q, got %q", i, w, doc.Fragments[i].Text)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 0 {
		t.Errorf("expected 0 fragments for empty input, got %d", len(doc.Fragments))
	}
	if doc.HasText() {
		t.Error("expected no speakable text")
	}
}

func TestTextParser_SingleLine(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("Hello world"), "single.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(doc.Fragments))
	}
	if doc.SpokenText() != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", doc.SpokenText())
	}
}

func TestTextParser_WhitespaceOnlyLinesAreBlank(t *testing.T) {
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(doc.Fragments))
	}
}
