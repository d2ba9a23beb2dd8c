package tts

import (
	"context"
	"strings"
	"testing"
	"time"

	domain "github.com/dyslexiacare/screening/internal/domain/tts"
)

type fakeSynth struct {
	lastText  string
	lastLang  string
	lastSpeed float64
}

func (f *fakeSynth) Synthesize(_ context.Context, text, language string, speed float64) ([]byte, error) {
	f.lastText = text
	f.lastLang = language
	f.lastSpeed = speed
	return []byte("audio-bytes"), nil
}

type fakeTTSRepo struct{ saved []*domain.Session }

func (r *fakeTTSRepo) Save(_ context.Context, s *domain.Session) error {
	r.saved = append(r.saved, s)
	return nil
}
func (r *fakeTTSRepo) Latest(context.Context, string, int) ([]*domain.Session, error) {
	return nil, nil
}

type fakeStore struct{}

func (fakeStore) Upload(_ context.Context, _, key string) (string, error) {
	return "http://store.local/" + key, nil
}
func (fakeStore) UploadAndCleanup(_ context.Context, localPath, key string) (string, error) {
	return "http://store.local/" + key, nil
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

func newTestService(synth *fakeSynth, repo *fakeTTSRepo) *Service {
	return &Service{
		Synth:     synth,
		Repo:      repo,
		Artifacts: fakeStore{},
		Clock:     fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func TestSynthesize_EmptyTextRejected(t *testing.T) {
	svc := newTestService(&fakeSynth{}, &fakeTTSRepo{})
	if _, err := svc.Synthesize(context.Background(), SynthesizeCommand{TenantID: "t1", Text: "   "}); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

func TestSynthesize_SpeedClampedAndLanguageNormalized(t *testing.T) {
	synth := &fakeSynth{}
	repo := &fakeTTSRepo{}
	svc := newTestService(synth, repo)

	sess, err := svc.Synthesize(context.Background(), SynthesizeCommand{
		TenantID: "t1",
		Text:     "hello world",
		Speed:    9.0,
		Language: "JP",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Speed != domain.MaxSpeed {
		t.Fatalf("speed should clamp to %v, got %v", domain.MaxSpeed, sess.Speed)
	}
	if sess.Language != "en" {
		t.Fatalf("unsupported language should fall back to en, got %q", sess.Language)
	}
	if len(repo.saved) != 1 || repo.saved[0].AudioURL == "" {
		t.Fatalf("session with audio URL should be persisted, got %+v", repo.saved)
	}
}

func TestSynthesize_PhonicsModeHyphenatesLongWords(t *testing.T) {
	synth := &fakeSynth{}
	svc := newTestService(synth, &fakeTTSRepo{})

	_, err := svc.Synthesize(context.Background(), SynthesizeCommand{
		TenantID:    "t1",
		Text:        "reading practice",
		PhonicsMode: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(synth.lastText, "-") {
		t.Fatalf("phonics mode should hyphenate long words, synthesizer got %q", synth.lastText)
	}
	if strings.Contains(synth.lastText, "practice") {
		t.Fatalf("long word should have been split, got %q", synth.lastText)
	}
}

func TestHyphenate(t *testing.T) {
	cases := map[string]string{
		"reading":  "rea-din-g",
		"practice": "pra-cti-ce",
	}
	for in, want := range cases {
		if got := hyphenate(in); got != want {
			t.Fatalf("hyphenate(%q) = %q, want %q", in, got, want)
		}
	}
}
