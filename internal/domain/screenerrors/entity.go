package screenerrors

import "time"

// ModalityError represents a persisted per-modality analysis failure.
// Failures are absorbed into a neutral result by the pipeline; this log is
// the audit trail of what was absorbed.
type ModalityError struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	SessionID string    `json:"session_id"`
	Modality  string    `json:"modality,omitempty"`
	Phase     string    `json:"phase,omitempty"` // upload | analyze | timeout
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
