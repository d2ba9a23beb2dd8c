package mysql

import (
	"context"
	"database/sql"

	domain "github.com/dyslexiacare/screening/internal/domain/tts"
)

type TTSRepository struct {
	db *sql.DB
}

func NewTTSRepository(db *sql.DB) *TTSRepository {
	return &TTSRepository{db: db}
}

// Save insert TTS session record
func (r *TTSRepository) Save(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO tts_sessions
(id, tenant_id, input_text, language, speed, phonics_mode, audio_url, file_size, created_at)
VALUES (?,?,?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, stringOrDash(s.TenantID), s.InputText, s.Language, s.Speed,
		s.PhonicsMode, s.AudioURL, s.FileSize, s.CreatedAt,
	)
	return err
}

// Latest TTS sessions per tenant
func (r *TTSRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, input_text, language, speed, phonics_mode, audio_url, file_size, created_at
FROM tts_sessions
WHERE tenant_id=? ORDER BY created_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.TenantID, &s.InputText, &s.Language, &s.Speed,
			&s.PhonicsMode, &s.AudioURL, &s.FileSize, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
