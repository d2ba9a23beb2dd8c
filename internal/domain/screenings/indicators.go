package screenings

import (
	"fmt"
	"strings"
)

// Indicator tables for pattern scanning. The same scan runs over typed text,
// OCR extractions and speech transcripts.

// Mirror-confusable letter pairs (b/d, p/q, ...)
var letterReversalPairs = [][2]string{
	{"b", "d"},
	{"p", "q"},
	{"u", "n"},
	{"m", "w"},
}

// Word pairs commonly read or written reversed
var wordReversalPairs = [][2]string{
	{"was", "saw"},
	{"on", "no"},
	{"left", "felt"},
}

// correct spelling → phonetic rendering
var phoneticPairs = [][2]string{
	{"phone", "fone"},
	{"enough", "enuf"},
}

// tokenize lowercases and splits on whitespace, trimming punctuation.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := fields[:0]
	for _, f := range fields {
		w := strings.Trim(f, ".,;:!?\"'()[]")
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// DetectReversals flags letter-level and word-level reversal indicators.
// A word containing both letters of a confusable pair is a letter-level hit;
// both members of a word pair appearing in the text is a word-level collision.
func DetectReversals(text string) []string {
	words := tokenize(text)
	var hits []string

	for _, w := range words {
		for _, pair := range letterReversalPairs {
			if strings.Contains(w, pair[0]) && strings.Contains(w, pair[1]) {
				hits = append(hits, fmt.Sprintf("Potential %s/%s reversal in '%s'", pair[0], pair[1], w))
			}
		}
	}

	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}
	for _, pair := range wordReversalPairs {
		if present[pair[0]] && present[pair[1]] {
			hits = append(hits, fmt.Sprintf("Potential word reversal: '%s'/'%s'", pair[0], pair[1]))
		}
	}
	return hits
}

// DetectPhoneticSpellings flags words written as their phonetic rendering.
func DetectPhoneticSpellings(text string) []string {
	words := tokenize(text)
	var hits []string
	for _, w := range words {
		for _, pair := range phoneticPairs {
			if w == pair[1] {
				hits = append(hits, fmt.Sprintf("Phonetic spelling: '%s' (possibly '%s')", w, pair[0]))
			}
		}
	}
	return hits
}

// IndicatorConfidence converts an indicator count into a confidence score:
// baseline 0.2, +0.2 per indicator, capped at 0.9.
func IndicatorConfidence(indicators int) float64 {
	c := 0.2 + float64(indicators)*0.2
	if c > 0.9 {
		c = 0.9
	}
	return c
}
