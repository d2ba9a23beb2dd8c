package mysql

import (
	"context"
	"database/sql"

	domain "github.com/dyslexiacare/screening/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save insert report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO screening_reports (id, tenant_id, session_id, result, created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE result=VALUES(result);
`
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, stringOrDash(rep.TenantID), rep.SessionID, rep.Result, rep.CreatedAt,
	)
	return err
}

// Paginate with offset + limit (classic pagination)
func (r *ReportRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Report, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, session_id, result, created_at
FROM screening_reports
WHERE tenant_id=?
ORDER BY created_at DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.ID, &rep.TenantID, &rep.SessionID, &rep.Result, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

// LatestBySession returns the newest report for one session
func (r *ReportRepository) LatestBySession(ctx context.Context, tenant string, sessionID string) (*domain.Report, error) {
	const q = `
SELECT id, tenant_id, session_id, result, created_at
FROM screening_reports
WHERE tenant_id=? AND session_id=?
ORDER BY created_at DESC
LIMIT 1;
`
	var rep domain.Report
	if err := r.db.QueryRowContext(ctx, q, tenant, sessionID).Scan(
		&rep.ID, &rep.TenantID, &rep.SessionID, &rep.Result, &rep.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}
