package mysql

import (
	"context"
	"database/sql"

	domain "github.com/dyslexiacare/screening/internal/domain/screenerrors"
)

type ModalityErrorRepository struct {
	db *sql.DB
}

func NewModalityErrorRepository(db *sql.DB) *ModalityErrorRepository {
	return &ModalityErrorRepository{db: db}
}

// Save insert modality error record
func (r *ModalityErrorRepository) Save(ctx context.Context, e *domain.ModalityError) error {
	const q = `
INSERT INTO modality_errors (tenant_id, session_id, modality, phase, message, created_at)
VALUES (?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(e.TenantID), e.SessionID, e.Modality, e.Phase, e.Message, e.CreatedAt,
	)
	return err
}

// ListBySession returns the errors recorded for one session
func (r *ModalityErrorRepository) ListBySession(ctx context.Context, tenant string, sessionID string, limit int) ([]*domain.ModalityError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, session_id, modality, phase, message, created_at
FROM modality_errors
WHERE tenant_id=? AND session_id=?
ORDER BY created_at DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ModalityError
	for rows.Next() {
		var e domain.ModalityError
		if err := rows.Scan(&e.ID, &e.TenantID, &e.SessionID, &e.Modality, &e.Phase, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
