package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

type SessionRepository struct{ db *sql.DB }

func NewSessionRepository(db *sql.DB) *SessionRepository { return &SessionRepository{db: db} }

// Save insert/update Session record
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO screening_sessions
(id, tenant_id, triggered_at, modalities, status,
 confidence, risk_level, recommendations, summary, modality_results,
 audio_url, image_url, user_id, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 confidence = EXCLUDED.confidence,
 risk_level = EXCLUDED.risk_level,
 recommendations = EXCLUDED.recommendations,
 summary = EXCLUDED.summary,
 modality_results = EXCLUDED.modality_results,
 audio_url = EXCLUDED.audio_url,
 image_url = EXCLUDED.image_url,
 duration_ms = EXCLUDED.duration_ms;`

	tenant := stringOrDash(s.TenantID)
	status := stringOrDash(string(s.Status))
	triggered := s.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		s.ID, tenant, triggered, joinModalities(s.Modalities), status,
		s.Result.OverallConfidence, s.Result.RiskLevel,
		jsonOrNull(s.Result.Recommendations), s.Result.ScreeningSummary,
		jsonOrNull(s.ModalityResults),
		s.AudioURL, s.ImageURL, s.UserID, s.DurationMS,
	)
	return err
}

const sessionColumns = `id, tenant_id, triggered_at, modalities, status,
       confidence, risk_level, recommendations, summary, modality_results,
       audio_url, image_url, user_id, duration_ms`

// Get by ID + Tenant
func (r *SessionRepository) Get(ctx context.Context, tenant string, id domain.SessionID) (*domain.Session, error) {
	const q = `
SELECT ` + sessionColumns + `
FROM screening_sessions
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanSession(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest sessions per tenant
func (r *SessionRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + sessionColumns + `
FROM screening_sessions
WHERE tenant_id=$1 ORDER BY triggered_at DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Summary counts risk levels since N days
func (r *SessionRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.SummaryCounts, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*) AS total_sessions,
       COUNT(*) FILTER (WHERE risk_level='High')     AS high,
       COUNT(*) FILTER (WHERE risk_level='Moderate') AS moderate,
       COUNT(*) FILTER (WHERE risk_level='Low')      AS low
FROM screening_sessions
WHERE tenant_id=$1 AND triggered_at >= $2 AND status='success';`
	var c domain.SummaryCounts
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&c.Total, &c.High, &c.Moderate, &c.Low); err != nil {
		return domain.SummaryCounts{}, err
	}
	return c, nil
}

// UpdateStatus only touches the status column
func (r *SessionRepository) UpdateStatus(ctx context.Context, tenant string, id domain.SessionID, status domain.Status) error {
	const q = `
UPDATE screening_sessions
SET status = $1
WHERE tenant_id = $2 AND id = $3;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var modalities, recs, results string
	if err := row.Scan(
		&s.ID, &s.TenantID, &s.TriggeredAt, &modalities, &s.Status,
		&s.Result.OverallConfidence, &s.Result.RiskLevel,
		&recs, &s.Result.ScreeningSummary, &results,
		&s.AudioURL, &s.ImageURL, &s.UserID, &s.DurationMS,
	); err != nil {
		return nil, err
	}
	s.Modalities = splitModalities(modalities)
	_ = json.Unmarshal([]byte(recs), &s.Result.Recommendations)
	_ = json.Unmarshal([]byte(results), &s.ModalityResults)
	return &s, nil
}

func joinModalities(ms []domain.Modality) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

func splitModalities(s string) []domain.Modality {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]domain.Modality, len(parts))
	for i, p := range parts {
		out[i] = domain.Modality(p)
	}
	return out
}

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func jsonOrNull(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
