package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_ShortTextSinglePiece(t *testing.T) {
	parts := Split("Hello World", 100)
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0] != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", parts[0])
	}
}

func TestSplit_EmptyText(t *testing.T) {
	if parts := Split("", 100); parts != nil {
		t.Errorf("expected nil for empty text, got %v", parts)
	}
	if parts := Split("   \n\t", 100); parts != nil {
		t.Errorf("expected nil for whitespace text, got %v", parts)
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	parts := Split(text, 25)

	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %v", len(parts), parts)
	}
	want := []string{"First sentence here.", "Second sentence here.", "Third sentence here."}
	for i, w := range want {
		if parts[i] != w {
			t.Errorf("part[%d]: expected %q, got %q", i, w, parts[i])
		}
	}
}

func TestSplit_PacksSentencesUpToLimit(t *testing.T) {
	text := "One. Two. Three. Four."
	parts := Split(text, 10)

	// "One. Two." fits in 10, "Three." and "Four." pack next.
	if len(parts) < 2 {
		t.Fatalf("expected multiple parts, got %v", parts)
	}
	for _, p := range parts {
		if utf8.RuneCountInString(p) > 10 {
			t.Errorf("part %q exceeds limit", p)
		}
	}
}

func TestSplit_RespectsLimit(t *testing.T) {
	text := strings.Repeat("word ", 200)
	parts := Split(text, 100)
	for _, p := range parts {
		if utf8.RuneCountInString(p) > 100 {
			t.Errorf("part of length %d exceeds limit 100", utf8.RuneCountInString(p))
		}
	}
}

func TestSplit_NoTextLost(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta eta theta. Iota kappa lambda mu nu xi omicron pi rho sigma."
	parts := Split(text, 30)

	joined := strings.Join(parts, " ")
	wantWords := strings.Fields(text)
	gotWords := strings.Fields(joined)
	if len(wantWords) != len(gotWords) {
		t.Fatalf("word count changed: want %d, got %d", len(wantWords), len(gotWords))
	}
	for i := range wantWords {
		if wantWords[i] != gotWords[i] {
			t.Errorf("word[%d]: want %q, got %q", i, wantWords[i], gotWords[i])
		}
	}
}

func TestSplit_OversizedWordHardSplit(t *testing.T) {
	word := strings.Repeat("x", 250)
	parts := Split(word, 100)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if len(parts[0]) != 100 || len(parts[1]) != 100 || len(parts[2]) != 50 {
		t.Errorf("unexpected part sizes: %d, %d, %d", len(parts[0]), len(parts[1]), len(parts[2]))
	}
}

func TestSplit_MultibyteRunes(t *testing.T) {
	text := strings.Repeat("日本語のテキスト ", 30)
	parts := Split(text, 20)
	for _, p := range parts {
		if utf8.RuneCountInString(p) > 20 {
			t.Errorf("part %q exceeds 20 runes", p)
		}
	}
}

func TestSplit_ZeroLimitUsesDefault(t *testing.T) {
	text := strings.Repeat("word ", 50)
	parts := Split(text, 0)
	for _, p := range parts {
		if utf8.RuneCountInString(p) > DefaultLimit {
			t.Errorf("part of length %d exceeds default limit", utf8.RuneCountInString(p))
		}
	}
}
