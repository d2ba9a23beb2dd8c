package screenings

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dyslexiacare/screening/internal/application"
	screenerrdomain "github.com/dyslexiacare/screening/internal/domain/screenerrors"
	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

// Service implements the screening use-cases.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Repo       domain.Repository
	Analyzers  domain.AnalyzerSet
	Artifacts  domain.ArtifactStore
	Errors     screenerrdomain.Repository // optional, best-effort audit log
	Aggregator domain.Aggregator
	Clock      application.Clock
}

// Command untuk trigger screening. AudioPath/ImagePath are local temp files
// already written by the upload handler.
type ScreenCommand struct {
	TenantID     string
	Text         string
	ExpectedText string
	UserID       string
	AudioPath    string
	ImagePath    string
}

// Screen validates inputs, runs each present modality concurrently, and
// aggregates the results into a stored session. A single modality failure
// never aborts the pipeline; only zero inputs is an error.
func (s *Service) Screen(ctx context.Context, cmd ScreenCommand) (*domain.Session, error) {
	hasText := strings.TrimSpace(cmd.Text) != ""
	hasAudio := cmd.AudioPath != ""
	hasImage := cmd.ImagePath != ""
	if !hasText && !hasAudio && !hasImage {
		return nil, domain.ErrNoInput
	}

	now := s.Clock.Now()
	id := domain.SessionID(fmt.Sprintf("%s-screening", uuid.New().String()))

	var modalities []domain.Modality
	if hasText {
		modalities = append(modalities, domain.ModalityText)
	}
	if hasImage {
		modalities = append(modalities, domain.ModalityHandwriting)
	}
	if hasAudio {
		modalities = append(modalities, domain.ModalitySpeech)
	}

	initial := &domain.Session{
		ID:          id,
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		Modalities:  modalities,
		Status:      domain.StatusRunning,
		UserID:      cmd.UserID,
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return nil, fmt.Errorf("saving initial session: %w", err)
	}

	// The handwriting analyzer reads the stored URL, so the image is uploaded
	// before the fan-out. Audio is analyzed from the local file and uploaded
	// afterwards.
	var imageURL string
	if hasImage {
		key := fmt.Sprintf("%s/screenings/%s/%s", cmd.TenantID, id, filepath.Base(cmd.ImagePath))
		url, err := s.Artifacts.UploadAndCleanup(ctx, cmd.ImagePath, key)
		if err != nil {
			s.logModalityError(cmd.TenantID, id, domain.ModalityHandwriting, "upload", err)
		}
		imageURL = url
	}

	in := domain.AnalyzerInput{
		Text:         cmd.Text,
		ExpectedText: cmd.ExpectedText,
		AudioPath:    cmd.AudioPath,
		ImageURL:     imageURL,
	}

	// Fan out one goroutine per present modality. Results are buffered by
	// modality identity, not by arrival order.
	results := make(map[domain.Modality]domain.ModalityResult, len(modalities))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, m := range modalities {
		wg.Add(1)
		go func(m domain.Modality) {
			defer wg.Done()
			res, err := s.Analyzers.Analyze(ctx, m, in)
			if err != nil {
				s.logModalityError(cmd.TenantID, id, m, "analyze", err)
				res = domain.ModalityResult{
					Modality:   m,
					Confidence: 0.5, // neutral midpoint, not a zero that drags the aggregate
					Error:      err.Error(),
				}
			}
			res.Modality = m
			mu.Lock()
			results[m] = res
			mu.Unlock()
		}(m)
	}
	wg.Wait()

	var audioURL string
	if hasAudio {
		key := fmt.Sprintf("%s/screenings/%s/%s", cmd.TenantID, id, filepath.Base(cmd.AudioPath))
		url, err := s.Artifacts.UploadAndCleanup(ctx, cmd.AudioPath, key)
		if err != nil {
			s.logModalityError(cmd.TenantID, id, domain.ModalitySpeech, "upload", err)
		}
		audioURL = url
	}

	// Collect in the fixed modality order before aggregating.
	var ordered []domain.ModalityResult
	var scores []float64
	var perModalityRecs [][]string
	for _, m := range domain.ModalityOrder {
		res, ok := results[m]
		if !ok {
			continue
		}
		ordered = append(ordered, res)
		scores = append(scores, res.Confidence)
		perModalityRecs = append(perModalityRecs, res.Recommendations)
	}

	overall := s.Aggregator.Combine(scores)
	level := s.Aggregator.Classify(overall)

	session := &domain.Session{
		ID:          id,
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		Modalities:  modalities,
		Status:      domain.StatusSuccess,
		Result: domain.AggregateResult{
			OverallConfidence: overall,
			RiskLevel:         level,
			Recommendations:   s.Aggregator.Merge(perModalityRecs, overall),
			ScreeningSummary:  domain.Summarize(modalities, level, overall),
		},
		ModalityResults: ordered,
		AudioURL:        audioURL,
		ImageURL:        imageURL,
		UserID:          cmd.UserID,
		DurationMS:      s.Clock.Now().Sub(now).Milliseconds(),
	}

	if err := s.Repo.Save(ctx, session); err != nil {
		// best-effort: the running row must not stay running forever
		_ = s.Repo.UpdateStatus(ctx, cmd.TenantID, id, domain.StatusFailed)
		return session, fmt.Errorf("saving session result: %w", err)
	}
	return session, nil
}

func (s *Service) logModalityError(tenant string, id domain.SessionID, m domain.Modality, phase string, err error) {
	if s.Errors == nil {
		return
	}
	// best-effort; a failed audit write must not fail the pipeline
	_ = s.Errors.Save(context.Background(), &screenerrdomain.ModalityError{
		TenantID:  tenant,
		SessionID: string(id),
		Modality:  string(m),
		Phase:     phase,
		Message:   err.Error(),
		CreatedAt: s.Clock.Now(),
	})
}

// Latest returns the N most recent sessions
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Session, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get returns one session by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.SessionID) (*domain.Session, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Summary aggregates risk-level counts over the last N days
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (domain.SummaryCounts, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}

// ModalityErrors returns the absorbed-failure audit log for one session.
func (s *Service) ModalityErrors(ctx context.Context, tenant, sessionID string, limit int) ([]*screenerrdomain.ModalityError, error) {
	if s.Errors == nil {
		return nil, nil
	}
	return s.Errors.ListBySession(ctx, tenant, sessionID, limit)
}
