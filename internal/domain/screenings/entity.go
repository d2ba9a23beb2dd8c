package screenings

import (
	"time"
)

// ID tipe untuk Session
type SessionID string

// Modality enum
type Modality string

const (
	ModalityText        Modality = "text"
	ModalityHandwriting Modality = "handwriting"
	ModalitySpeech      Modality = "speech"
)

// ModalityOrder is the fixed evaluation/merge order. Merging follows this
// order regardless of which analyzer finishes first.
var ModalityOrder = []Modality{ModalityText, ModalityHandwriting, ModalitySpeech}

// RiskLevel enum
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Status enum
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ModalityResult is the output of one modality analyzer. Confidence is
// indicator strength in [0,1], not a correctness probability. Never mutated
// after the analyzer returns it.
type ModalityResult struct {
	Modality        Modality       `json:"modality"`
	Confidence      float64        `json:"confidence"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Error           string         `json:"error,omitempty"`
	Details         map[string]any `json:"details,omitempty"`
}

// AggregateResult value object
type AggregateResult struct {
	OverallConfidence float64   `json:"overall_confidence"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Recommendations   []string  `json:"recommendations"`
	ScreeningSummary  string    `json:"screening_summary"`
}

// Aggregate Root: Session
type Session struct {
	ID              SessionID        `json:"id"`
	TenantID        string           `json:"tenant_id"`
	TriggeredAt     time.Time        `json:"triggered_at"`
	Modalities      []Modality       `json:"modalities"`
	Status          Status           `json:"status"`
	Result          AggregateResult  `json:"result"`
	ModalityResults []ModalityResult `json:"modality_results,omitempty"`
	AudioURL        string           `json:"audio_url,omitempty"`
	ImageURL        string           `json:"image_url,omitempty"`
	UserID          string           `json:"user_id,omitempty"`
	DurationMS      int64            `json:"duration_ms"`
}
