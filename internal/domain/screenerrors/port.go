package screenerrors

import (
	"context"
)

// Repository defines persistence for modality errors
type Repository interface {
	Save(ctx context.Context, e *ModalityError) error
	ListBySession(ctx context.Context, tenant string, sessionID string, limit int) ([]*ModalityError, error)
}
