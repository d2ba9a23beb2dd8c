package analyzers

import (
	"context"
	"fmt"
	"time"

	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// DefaultTimeout bounds one modality analysis. A timed-out modality is
// treated like any other analyzer failure upstream.
const DefaultTimeout = 30 * time.Second

// Registry dispatches to the analyzer for each modality and applies the
// per-modality timeout. Implements the AnalyzerSet port.
type Registry struct {
	Text        domain.Analyzer
	Handwriting domain.Analyzer
	Speech      domain.Analyzer
	Timeout     time.Duration
}

func NewRegistry(text, handwriting, speech domain.Analyzer, timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{Text: text, Handwriting: handwriting, Speech: speech, Timeout: timeout}
}

func (r *Registry) Analyze(ctx context.Context, m domain.Modality, in domain.AnalyzerInput) (domain.ModalityResult, error) {
	var a domain.Analyzer
	switch m {
	case domain.ModalityText:
		a = r.Text
	case domain.ModalityHandwriting:
		a = r.Handwriting
	case domain.ModalitySpeech:
		a = r.Speech
	default:
		return domain.ModalityResult{}, fmt.Errorf("unsupported modality: %s", m)
	}
	if a == nil {
		return domain.ModalityResult{}, fmt.Errorf("no analyzer configured for modality: %s", m)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return a.Analyze(ctx, in)
}
