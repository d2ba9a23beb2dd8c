package reports

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/dyslexiacare/screening/internal/domain/reports"
	screenings "github.com/dyslexiacare/screening/internal/domain/screenings"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeNarrator struct {
	lastPayload string
	err         error
}

func (f *fakeNarrator) Narrate(_ context.Context, sessionJSON string) (string, error) {
	f.lastPayload = sessionJSON
	if f.err != nil {
		return "", f.err
	}
	return `{"observations":["slow reading pace"]}`, nil
}

type fakeReportRepo struct {
	saved []*domain.Report
}

func (r *fakeReportRepo) Save(_ context.Context, rep *domain.Report) error {
	r.saved = append(r.saved, rep)
	return nil
}
func (r *fakeReportRepo) Paginate(context.Context, string, int, int) ([]*domain.Report, error) {
	return nil, nil
}
func (r *fakeReportRepo) LatestBySession(context.Context, string, string) (*domain.Report, error) {
	return nil, nil
}

type fakeSessionRepo struct {
	session *screenings.Session
}

func (r *fakeSessionRepo) Save(context.Context, *screenings.Session) error { return nil }
func (r *fakeSessionRepo) Get(context.Context, string, screenings.SessionID) (*screenings.Session, error) {
	return r.session, nil
}
func (r *fakeSessionRepo) Latest(context.Context, string, int) ([]*screenings.Session, error) {
	return nil, nil
}
func (r *fakeSessionRepo) Summary(context.Context, string, int) (screenings.SummaryCounts, error) {
	return screenings.SummaryCounts{}, nil
}
func (r *fakeSessionRepo) UpdateStatus(context.Context, string, screenings.SessionID, screenings.Status) error {
	return nil
}

func TestAnalyzeAndStore_PersistsNarrative(t *testing.T) {
	narrator := &fakeNarrator{}
	repo := &fakeReportRepo{}
	sess := &screenings.Session{
		ID:       "a1b2c3d4-e5f6-a7b8-c9d0-e1f2a3b4c5d6-screening",
		TenantID: "t1",
		Result: screenings.AggregateResult{
			RiskLevel:        screenings.RiskModerate,
			ScreeningSummary: "summary text",
		},
	}
	svc := &Service{
		Client:   narrator,
		Repo:     repo,
		Sessions: &fakeSessionRepo{session: sess},
		Clock:    fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}

	rep, err := svc.AnalyzeAndStore(context.Background(), "t1", string(sess.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(string(rep.ID), "-report") {
		t.Fatalf("report id should carry the -report suffix, got %s", rep.ID)
	}
	if rep.SessionID != string(sess.ID) {
		t.Fatalf("report should reference the session, got %s", rep.SessionID)
	}
	if !strings.Contains(narrator.lastPayload, "Moderate") {
		t.Fatalf("narrator should receive the session risk level, got %q", narrator.lastPayload)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one saved report, got %d", len(repo.saved))
	}
}

func TestAnalyzeAndStore_MissingSession(t *testing.T) {
	svc := &Service{
		Client:   &fakeNarrator{},
		Repo:     &fakeReportRepo{},
		Sessions: &fakeSessionRepo{},
		Clock:    fakeClock{t: time.Now()},
	}

	if _, err := svc.AnalyzeAndStore(context.Background(), "t1", "missing-id"); err == nil {
		t.Fatalf("expected error for missing session")
	}
}

func TestAnalyzeAndStore_NarratorErrorPropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	repo := &fakeReportRepo{}
	svc := &Service{
		Client:   &fakeNarrator{err: boom},
		Repo:     repo,
		Sessions: &fakeSessionRepo{session: &screenings.Session{ID: "x", TenantID: "t1"}},
		Clock:    fakeClock{t: time.Now()},
	}

	if _, err := svc.AnalyzeAndStore(context.Background(), "t1", "x"); !errors.Is(err, boom) {
		t.Fatalf("expected narrator error, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("no report may be saved when narration fails")
	}
}
