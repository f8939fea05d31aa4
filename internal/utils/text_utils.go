package utils

import (
	"strings"
	"unicode/utf8"
)

// TextProcessor bounds and sanitizes text before it is embedded into
// completion prompts.
type TextProcessor struct {
	maxChars int
	marker   string
}

// NewTextProcessor creates a processor that truncates at maxChars bytes.
func NewTextProcessor(maxChars int) *TextProcessor {
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &TextProcessor{maxChars: maxChars, marker: "\n[... truncated ...]"}
}

// Process sanitizes and bounds text in one pass.
func (p *TextProcessor) Process(text string) string {
	return p.Truncate(SanitizeUTF8(text))
}

// Truncate cuts text to the processor's limit without splitting a UTF-8
// sequence, appending a marker when anything was removed.
func (p *TextProcessor) Truncate(text string) string {
	if len(text) <= p.maxChars {
		return text
	}
	cut := text[:p.maxChars]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + p.marker
}

// SanitizeUTF8 drops invalid byte sequences and NUL characters, which some
// providers reject.
func SanitizeUTF8(text string) string {
	text = strings.ToValidUTF8(text, "")
	return strings.ReplaceAll(text, "\x00", "")
}
