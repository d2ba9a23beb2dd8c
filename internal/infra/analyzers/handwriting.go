package analyzers

import (
	"context"
	"fmt"

	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// TextExtractor reads handwriting from a stored image (vision model, OCR
// service, ...). Swappable so tests stay offline.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

// HandwritingAnalyzer extracts text from the uploaded page and runs the same
// indicator scan used for typed text over the extraction.
type HandwritingAnalyzer struct {
	OCR TextExtractor
}

func NewHandwritingAnalyzer(ocr TextExtractor) *HandwritingAnalyzer {
	return &HandwritingAnalyzer{OCR: ocr}
}

func (a *HandwritingAnalyzer) Analyze(ctx context.Context, in domain.AnalyzerInput) (domain.ModalityResult, error) {
	if in.ImageURL == "" {
		return domain.ModalityResult{}, fmt.Errorf("no handwriting image available")
	}

	extracted, err := a.OCR.ExtractText(ctx, in.ImageURL)
	if err != nil {
		return domain.ModalityResult{}, fmt.Errorf("extracting handwriting text: %w", err)
	}

	reversals := domain.DetectReversals(extracted)
	phonetic := domain.DetectPhoneticSpellings(extracted)
	confidence := domain.IndicatorConfidence(len(reversals) + len(phonetic))

	var recs []string
	if len(reversals) > 0 {
		recs = append(recs, "Practice letter formation exercises")
		recs = append(recs, "Use multi-sensory writing techniques")
	}
	if len(phonetic) > 0 {
		recs = append(recs, "Structured spelling practice recommended")
	}

	return domain.ModalityResult{
		Modality:        domain.ModalityHandwriting,
		Confidence:      confidence,
		Recommendations: recs,
		Details: map[string]any{
			"extracted_text":     extracted,
			"reversals_detected": reversals,
			"phonetic_patterns":  phonetic,
		},
	}, nil
}
