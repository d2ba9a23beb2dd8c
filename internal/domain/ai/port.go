package ai

import "context"

// Client produces a narrative assessment (JSON string) from a screening
// session summary payload.
type Client interface {
	Narrate(ctx context.Context, sessionJSON string) (string, error)
}
