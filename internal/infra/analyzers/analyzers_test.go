package analyzers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

func TestTextAnalyzer_ReversalText(t *testing.T) {
	a := NewTextAnalyzer()
	res, err := a.Analyze(context.Background(), domain.AnalyzerInput{Text: "I was on the saw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// one word-reversal collision → 0.2 + 0.2
	if res.Confidence != 0.4 {
		t.Fatalf("expected confidence 0.4, got %v", res.Confidence)
	}
	found := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, "Visual processing") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reversal recommendation, got %v", res.Recommendations)
	}
	if res.Details["word_count"] != 5 {
		t.Fatalf("expected word_count 5, got %v", res.Details["word_count"])
	}
}

func TestTextAnalyzer_Deterministic(t *testing.T) {
	a := NewTextAnalyzer()
	in := domain.AnalyzerInput{Text: "the bird sat on the bed with enuf patience"}
	first, err := a.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := a.Analyze(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Confidence != first.Confidence {
			t.Fatalf("analysis must be deterministic: %v vs %v", again.Confidence, first.Confidence)
		}
	}
}

func TestTextAnalyzer_EmptyTextFails(t *testing.T) {
	a := NewTextAnalyzer()
	if _, err := a.Analyze(context.Background(), domain.AnalyzerInput{Text: "   "}); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) ExtractText(context.Context, string) (string, error) { return f.text, f.err }

func TestHandwritingAnalyzer(t *testing.T) {
	a := NewHandwritingAnalyzer(fakeOCR{text: "I had enuf of it"})
	res, err := a.Analyze(context.Background(), domain.AnalyzerInput{ImageURL: "http://store.local/page.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Confidence != 0.4 {
		t.Fatalf("one phonetic hit should score 0.4, got %v", res.Confidence)
	}
	if res.Details["extracted_text"] != "I had enuf of it" {
		t.Fatalf("extraction should be carried in details, got %v", res.Details)
	}
}

func TestHandwritingAnalyzer_OCRFailurePropagates(t *testing.T) {
	a := NewHandwritingAnalyzer(fakeOCR{err: errors.New("backend down")})
	if _, err := a.Analyze(context.Background(), domain.AnalyzerInput{ImageURL: "http://x/y.png"}); err == nil {
		t.Fatalf("expected OCR failure to propagate to the orchestrator")
	}
}

func TestHandwritingAnalyzer_MissingImage(t *testing.T) {
	a := NewHandwritingAnalyzer(fakeOCR{})
	if _, err := a.Analyze(context.Background(), domain.AnalyzerInput{}); err == nil {
		t.Fatalf("expected error without an image URL")
	}
}

type fakeASR struct {
	tr  Transcription
	err error
}

func (f fakeASR) Transcribe(context.Context, string) (Transcription, error) { return f.tr, f.err }

func TestSpeechAnalyzer_SlowReadingFlagged(t *testing.T) {
	// 10 words over 12 seconds → 50 wpm
	a := NewSpeechAnalyzer(fakeASR{tr: Transcription{
		Text:     "one two three four five six seven eight nine ten",
		Duration: 12,
	}})
	res, err := a.Analyze(context.Background(), domain.AnalyzerInput{AudioPath: "/tmp/r.wav"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slow := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, "fluency") {
			slow = true
		}
	}
	if !slow {
		t.Fatalf("slow reading should produce a fluency recommendation, got %v", res.Recommendations)
	}
	if res.Details["reading_speed_wpm"] != 50.0 {
		t.Fatalf("expected 50 wpm, got %v", res.Details["reading_speed_wpm"])
	}
}

func TestSpeechAnalyzer_AccuracyAgainstExpected(t *testing.T) {
	a := NewSpeechAnalyzer(fakeASR{tr: Transcription{
		Text:     "the quick fox",
		Duration: 1,
	}})
	res, err := a.Analyze(context.Background(), domain.AnalyzerInput{
		AudioPath:    "/tmp/r.wav",
		ExpectedText: "the quick brown fox jumps",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Details["accuracy_score"] != 0.6 {
		t.Fatalf("3 of 5 expected tokens → 0.6, got %v", res.Details["accuracy_score"])
	}
	found := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, "word recognition") {
			found = true
		}
	}
	if !found {
		t.Fatalf("low accuracy should add a recognition recommendation, got %v", res.Recommendations)
	}
}

func TestTokenOverlap(t *testing.T) {
	if got := tokenOverlap("a b c d", "a b c d"); got != 1.0 {
		t.Fatalf("identical text should overlap fully, got %v", got)
	}
	if got := tokenOverlap("a b c d", "x y"); got != 0.0 {
		t.Fatalf("disjoint text should overlap zero, got %v", got)
	}
}

// blockingAnalyzer never returns until the context is cancelled.
type blockingAnalyzer struct{}

func (blockingAnalyzer) Analyze(ctx context.Context, _ domain.AnalyzerInput) (domain.ModalityResult, error) {
	<-ctx.Done()
	return domain.ModalityResult{}, ctx.Err()
}

func TestRegistry_StuckAnalyzerTimesOut(t *testing.T) {
	reg := NewRegistry(blockingAnalyzer{}, nil, nil, 20*time.Millisecond)

	_, err := reg.Analyze(context.Background(), domain.ModalityText, domain.AnalyzerInput{Text: "abc"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("a stuck analyzer must surface as a deadline error, got %v", err)
	}
}

func TestRegistry_DispatchAndUnknownModality(t *testing.T) {
	reg := NewRegistry(NewTextAnalyzer(), nil, nil, time.Second)

	res, err := reg.Analyze(context.Background(), domain.ModalityText, domain.AnalyzerInput{Text: "hello there friend"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Modality != domain.ModalityText {
		t.Fatalf("expected text result, got %v", res.Modality)
	}

	if _, err := reg.Analyze(context.Background(), domain.Modality("video"), domain.AnalyzerInput{}); err == nil {
		t.Fatalf("expected error for unsupported modality")
	}
	if _, err := reg.Analyze(context.Background(), domain.ModalityHandwriting, domain.AnalyzerInput{}); err == nil {
		t.Fatalf("expected error when no analyzer is configured")
	}
}
