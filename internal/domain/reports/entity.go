package reports

import "time"

// ReportID identifier type
type ReportID string

// Report represents an AI-generated narrative assessment of a stored
// screening session, kept for auditing and retrieval
type Report struct {
	ID        ReportID  `json:"id"`
	TenantID  string    `json:"tenant_id"`
	SessionID string    `json:"session_id"`
	Result    string    `json:"result"` // JSON string from the model
	CreatedAt time.Time `json:"created_at"`
}
