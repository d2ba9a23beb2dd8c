package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dyslexiacare/screening/internal/application"
	domain "github.com/dyslexiacare/screening/internal/domain/tts"
	screenings "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// Service implements text-to-speech generation for accessibility playback.
type Service struct {
	Synth     domain.Synthesizer
	Repo      domain.Repository
	Artifacts screenings.ArtifactStore
	Clock     application.Clock
}

// Command untuk synthesis
type SynthesizeCommand struct {
	TenantID    string
	Text        string
	Speed       float64
	PhonicsMode bool
	Language    string
}

// Synthesize renders the text to audio, uploads it, and records the session.
func (s *Service) Synthesize(ctx context.Context, cmd SynthesizeCommand) (*domain.Session, error) {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, fmt.Errorf("no text provided for synthesis")
	}

	speed := clampSpeed(cmd.Speed)
	language := normalizeLanguage(cmd.Language)

	processed := text
	if cmd.PhonicsMode {
		processed = applyPhonics(text)
	}

	audio, err := s.Synth.Synthesize(ctx, processed, language, speed)
	if err != nil {
		return nil, fmt.Errorf("synthesizing audio: %w", err)
	}

	id := domain.SessionID(fmt.Sprintf("%s-tts", uuid.New().String()))

	// Write locally first, then hand off to the artifact store which removes
	// the temp file once uploaded.
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("%s.mp3", id))
	if err := os.WriteFile(tmp, audio, 0o600); err != nil {
		return nil, fmt.Errorf("writing audio temp file: %w", err)
	}
	key := fmt.Sprintf("%s/tts/%s.mp3", cmd.TenantID, id)
	url, err := s.Artifacts.UploadAndCleanup(ctx, tmp, key)
	if err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("storing audio: %w", err)
	}

	sess := &domain.Session{
		ID:          id,
		TenantID:    cmd.TenantID,
		InputText:   text,
		Language:    language,
		Speed:       speed,
		PhonicsMode: cmd.PhonicsMode,
		AudioURL:    url,
		FileSize:    int64(len(audio)),
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, sess); err != nil {
		return sess, fmt.Errorf("saving tts session: %w", err)
	}
	return sess, nil
}

// Latest returns recent TTS sessions
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Session, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

func clampSpeed(speed float64) float64 {
	if speed == 0 {
		return domain.DefaultSpeed
	}
	if speed < domain.MinSpeed {
		return domain.MinSpeed
	}
	if speed > domain.MaxSpeed {
		return domain.MaxSpeed
	}
	return speed
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range domain.SupportedLanguages {
		if lang == l {
			return lang
		}
	}
	return "en"
}

// applyPhonics breaks long words into hyphenated chunks so the voice reads
// them syllable by syllable.
func applyPhonics(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if len(w) > 6 {
			words[i] = hyphenate(w)
		}
	}
	return strings.Join(words, " ")
}

func hyphenate(word string) string {
	var parts []string
	for len(word) > 3 {
		parts = append(parts, word[:3])
		word = word[3:]
	}
	if word != "" {
		parts = append(parts, word)
	}
	return strings.Join(parts, "-")
}
