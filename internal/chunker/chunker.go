package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultLimit is the maximum text length the synthesis endpoint
// accepts per request.
const DefaultLimit = 100

// Split breaks text into pieces of at most limit runes, preferring
// sentence boundaries, then word boundaries. A single word longer
// than the limit is hard-split as a last resort. Order is preserved
// and no text is repeated: spoken audio is concatenated from the
// pieces, so overlap would duplicate speech.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, sent := range splitSentences(text) {
		sentLen := utf8.RuneCountInString(sent)

		if sentLen > limit {
			// Sentence itself is too long; fall back to words.
			flush()
			parts = append(parts, splitWords(sent, limit)...)
			continue
		}

		// +1 for the joining space.
		if currentLen > 0 && currentLen+1+sentLen > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(sent)
		currentLen += sentLen
	}
	flush()

	return parts
}

// splitSentences does basic sentence splitting on terminal
// punctuation followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// splitWords packs whitespace-separated words into limit-sized pieces,
// hard-splitting any single word that exceeds the limit on its own.
func splitWords(text string, limit int) []string {
	var parts []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)

		if wordLen > limit {
			flush()
			for _, piece := range hardSplit(word, limit) {
				parts = append(parts, piece)
			}
			continue
		}

		if currentLen > 0 && currentLen+1+wordLen > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	flush()

	return parts
}

// hardSplit cuts a string into limit-sized rune groups.
func hardSplit(s string, limit int) []string {
	var parts []string
	runes := []rune(s)
	for len(runes) > limit {
		parts = append(parts, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
