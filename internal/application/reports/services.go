package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dyslexiacare/screening/internal/application"
	"github.com/dyslexiacare/screening/internal/domain/ai"
	domain "github.com/dyslexiacare/screening/internal/domain/reports"
	screenings "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// Service turns a stored screening session into a narrative report via the
// AI client and keeps the result for retrieval.
type Service struct {
	Client   ai.Client
	Repo     domain.Repository
	Sessions screenings.Repository
	Clock    application.Clock
}

// AnalyzeAndStore fetches the session, asks the model for a narrative, and
// persists the report.
func (s *Service) AnalyzeAndStore(ctx context.Context, tenant, sessionID string) (*domain.Report, error) {
	sess, err := s.Sessions.Get(ctx, tenant, screenings.SessionID(sessionID))
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshaling session: %w", err)
	}

	result, err := s.Client.Narrate(ctx, string(payload))
	if err != nil {
		return nil, err
	}

	rep := &domain.Report{
		ID:        domain.ReportID(fmt.Sprintf("%s-report", uuid.New().String())),
		TenantID:  tenant,
		SessionID: sessionID,
		Result:    result,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, rep); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	return rep, nil
}

// ListReports returns a page of stored reports
func (s *Service) ListReports(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Report, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// LatestBySession returns the most recent report for one session
func (s *Service) LatestBySession(ctx context.Context, tenant, sessionID string) (*domain.Report, error) {
	return s.Repo.LatestBySession(ctx, tenant, sessionID)
}
