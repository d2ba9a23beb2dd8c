package reports

import "context"

// Repository port for persisting and querying reports
type Repository interface {
	Save(ctx context.Context, r *Report) error
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Report, error)
	LatestBySession(ctx context.Context, tenant string, sessionID string) (*Report, error)
}
