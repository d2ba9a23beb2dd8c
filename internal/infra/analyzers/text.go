package analyzers

import (
	"context"
	"fmt"
	"math"
	"strings"

	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// TextAnalyzer scans typed text for reading-difficulty indicators. Fully
// deterministic; no model call involved.
type TextAnalyzer struct{}

func NewTextAnalyzer() *TextAnalyzer { return &TextAnalyzer{} }

func (a *TextAnalyzer) Analyze(_ context.Context, in domain.AnalyzerInput) (domain.ModalityResult, error) {
	words := strings.Fields(in.Text)
	if len(words) == 0 {
		return domain.ModalityResult{}, fmt.Errorf("empty text input")
	}

	var totalLen, complexWords int
	for _, w := range words {
		totalLen += len(w)
		if len(w) > 7 {
			complexWords++
		}
	}
	avgWordLen := float64(totalLen) / float64(len(words))
	sentences := strings.Count(in.Text, ".") + strings.Count(in.Text, "!") + strings.Count(in.Text, "?")

	reversals := domain.DetectReversals(in.Text)
	phonetic := domain.DetectPhoneticSpellings(in.Text)
	confidence := domain.IndicatorConfidence(len(reversals) + len(phonetic))

	var recs []string
	if len(reversals) > 0 {
		recs = append(recs, "Visual processing exercises may help with letter/word reversals")
	}
	if len(phonetic) > 0 {
		recs = append(recs, "Structured spelling practice recommended")
		recs = append(recs, "Phonics-based reading instruction may be beneficial")
	}
	if avgWordLen < 4 {
		recs = append(recs, "Encourage reading materials with varied vocabulary")
	}

	return domain.ModalityResult{
		Modality:        domain.ModalityText,
		Confidence:      confidence,
		Recommendations: recs,
		Details: map[string]any{
			"word_count":          len(words),
			"sentence_count":      sentences,
			"average_word_length": math.Round(avgWordLen*100) / 100,
			"complex_words_count": complexWords,
			"reversals_detected":  reversals,
			"phonetic_patterns":   phonetic,
		},
	}, nil
}
