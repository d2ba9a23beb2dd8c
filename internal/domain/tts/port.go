package tts

import "context"

// Repository port for TTS sessions
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Latest(ctx context.Context, tenant string, limit int) ([]*Session, error)
}

// Synthesizer port: renders text to audio bytes
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string, speed float64) ([]byte, error)
}
