package analyzers

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// Transcription is a speech-to-text result. Duration is in seconds; zero
// means the backend did not report it.
type Transcription struct {
	Text     string
	Duration float64
}

// Transcriber converts a local audio recording to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Transcription, error)
}

// estimated bitrate for duration fallback: 16 kHz 16-bit mono PCM
const fallbackBytesPerSecond = 32000

// SpeechAnalyzer assesses reading fluency from a transcript of the uploaded
// recording: pace, accuracy against the expected passage, and the indicator
// scan over what was actually read.
type SpeechAnalyzer struct {
	ASR Transcriber
}

func NewSpeechAnalyzer(asr Transcriber) *SpeechAnalyzer {
	return &SpeechAnalyzer{ASR: asr}
}

func (a *SpeechAnalyzer) Analyze(ctx context.Context, in domain.AnalyzerInput) (domain.ModalityResult, error) {
	if in.AudioPath == "" {
		return domain.ModalityResult{}, fmt.Errorf("no audio recording available")
	}

	tr, err := a.ASR.Transcribe(ctx, in.AudioPath)
	if err != nil {
		return domain.ModalityResult{}, fmt.Errorf("transcribing audio: %w", err)
	}

	duration := tr.Duration
	if duration <= 0 {
		if st, serr := os.Stat(in.AudioPath); serr == nil {
			duration = float64(st.Size()) / fallbackBytesPerSecond
		}
	}

	words := strings.Fields(tr.Text)
	var wpm float64
	if duration > 0 {
		wpm = float64(len(words)) / (duration / 60.0)
	}

	accuracy := -1.0 // unknown without an expected passage
	if strings.TrimSpace(in.ExpectedText) != "" {
		accuracy = tokenOverlap(in.ExpectedText, tr.Text)
	}

	reversals := domain.DetectReversals(tr.Text)
	phonetic := domain.DetectPhoneticSpellings(tr.Text)
	confidence := domain.IndicatorConfidence(len(reversals) + len(phonetic))

	var recs []string
	if wpm > 0 && wpm < 100 {
		confidence = math.Min(0.9, confidence+0.1)
		recs = append(recs, "Practice reading fluency exercises daily")
	}
	if accuracy >= 0 && accuracy < 0.85 {
		confidence = math.Min(0.9, confidence+0.1)
		recs = append(recs, "Work on word recognition and pronunciation")
	}
	if len(reversals)+len(phonetic) > 0 {
		recs = append(recs, "Build confidence through repeated reading of familiar texts")
	}

	details := map[string]any{
		"transcribed_text":  tr.Text,
		"audio_duration":    math.Round(duration*100) / 100,
		"reading_speed_wpm": math.Round(wpm*10) / 10,
	}
	if accuracy >= 0 {
		details["accuracy_score"] = math.Round(accuracy*1000) / 1000
	}

	return domain.ModalityResult{
		Modality:        domain.ModalitySpeech,
		Confidence:      confidence,
		Recommendations: recs,
		Details:         details,
	}, nil
}

// tokenOverlap is the fraction of expected tokens present in the transcript.
func tokenOverlap(expected, actual string) float64 {
	exp := strings.Fields(strings.ToLower(expected))
	if len(exp) == 0 {
		return 1.0
	}
	got := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(actual)) {
		got[strings.Trim(w, ".,;:!?\"'")] = true
	}
	matched := 0
	for _, w := range exp {
		if got[strings.Trim(w, ".,;:!?\"'")] {
			matched++
		}
	}
	return float64(matched) / float64(len(exp))
}
