package screenings

import (
	"context"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, tenant string, id SessionID) (*Session, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Session, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (SummaryCounts, error)
	UpdateStatus(ctx context.Context, tenant string, id SessionID, status Status) error
}

// SummaryCounts value object for tenant-level stats
type SummaryCounts struct {
	Total    int `json:"total_sessions"`
	High     int `json:"high"`
	Moderate int `json:"moderate"`
	Low      int `json:"low"`
}

// AnalyzerInput carries whatever a modality analyzer may need. Each analyzer
// reads only the fields for its own modality.
type AnalyzerInput struct {
	Text         string
	ExpectedText string
	AudioPath    string // local path of the uploaded recording
	ImageURL     string // stored URL of the uploaded handwriting image
}

// Analyzer port: one modality, independent of the others
type Analyzer interface {
	Analyze(ctx context.Context, in AnalyzerInput) (ModalityResult, error)
}

// AnalyzerSet port (dispatch per modality, applies the per-modality timeout)
type AnalyzerSet interface {
	Analyze(ctx context.Context, m Modality, in AnalyzerInput) (ModalityResult, error)
}

// ArtifactStore port (interface untuk penyimpanan file input/output)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
