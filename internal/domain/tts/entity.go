package tts

import "time"

// SessionID identifier type
type SessionID string

// Speed bounds for synthesized reading
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	DefaultSpeed = 1.0
)

// SupportedLanguages whitelist; anything else falls back to English.
var SupportedLanguages = []string{"en", "es", "fr", "de"}

// Session records one text-to-speech generation.
type Session struct {
	ID          SessionID `json:"id"`
	TenantID    string    `json:"tenant_id"`
	InputText   string    `json:"input_text"`
	Language    string    `json:"language"`
	Speed       float64   `json:"speed"`
	PhonicsMode bool      `json:"phonics_mode"`
	AudioURL    string    `json:"audio_url,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
