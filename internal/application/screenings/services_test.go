package screenings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	screenerrdomain "github.com/dyslexiacare/screening/internal/domain/screenerrors"
	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeRepo struct {
	mu            sync.Mutex
	saved         []*domain.Session
	failAfter     int // fail Save once this many saves succeeded
	statusUpdates []domain.Status
}

func (r *fakeRepo) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter > 0 && len(r.saved) >= r.failAfter {
		return errors.New("database gone away")
	}
	cp := *s
	r.saved = append(r.saved, &cp)
	return nil
}
func (r *fakeRepo) Get(context.Context, string, domain.SessionID) (*domain.Session, error) {
	return nil, nil
}
func (r *fakeRepo) Latest(context.Context, string, int) ([]*domain.Session, error) { return nil, nil }
func (r *fakeRepo) Summary(context.Context, string, int) (domain.SummaryCounts, error) {
	return domain.SummaryCounts{}, nil
}
func (r *fakeRepo) UpdateStatus(_ context.Context, _ string, _ domain.SessionID, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakeRepo) last() *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

type fakeStore struct{}

func (fakeStore) Upload(_ context.Context, _, key string) (string, error) {
	return "http://store.local/" + key, nil
}
func (fakeStore) UploadAndCleanup(_ context.Context, _, key string) (string, error) {
	return "http://store.local/" + key, nil
}

// fakeAnalyzers returns a fixed result (or error) per modality.
type fakeAnalyzers struct {
	results map[domain.Modality]domain.ModalityResult
	errs    map[domain.Modality]error
}

func (f fakeAnalyzers) Analyze(_ context.Context, m domain.Modality, _ domain.AnalyzerInput) (domain.ModalityResult, error) {
	if err, ok := f.errs[m]; ok {
		return domain.ModalityResult{}, err
	}
	return f.results[m], nil
}

type fakeErrorLog struct {
	mu      sync.Mutex
	entries []*screenerrdomain.ModalityError
}

func (l *fakeErrorLog) Save(_ context.Context, e *screenerrdomain.ModalityError) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}
func (l *fakeErrorLog) ListBySession(context.Context, string, string, int) ([]*screenerrdomain.ModalityError, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries, nil
}

func newTestService(an domain.AnalyzerSet, repo *fakeRepo, errs screenerrdomain.Repository) *Service {
	return &Service{
		Repo:       repo,
		Analyzers:  an,
		Artifacts:  fakeStore{},
		Errors:     errs,
		Aggregator: domain.NewAggregator(domain.DefaultThresholds(), domain.DefaultPenaltyCap),
		Clock:      fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func TestScreen_NoInputRejected(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(fakeAnalyzers{}, repo, nil)

	_, err := svc.Screen(context.Background(), ScreenCommand{TenantID: "t1"})
	if !errors.Is(err, domain.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("no session may be saved before input validation, saved %d", len(repo.saved))
	}
}

func TestScreen_SingleModalityConfidencePassesThrough(t *testing.T) {
	repo := &fakeRepo{}
	an := fakeAnalyzers{results: map[domain.Modality]domain.ModalityResult{
		domain.ModalityText: {
			Confidence:      0.4,
			Recommendations: []string{"Visual processing exercises may help with letter/word reversals"},
		},
	}}
	svc := newTestService(an, repo, nil)

	sess, err := svc.Screen(context.Background(), ScreenCommand{TenantID: "t1", Text: "I was on the saw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// one sample, no variance penalty
	if sess.Result.OverallConfidence != 0.4 {
		t.Fatalf("expected single-modality confidence unchanged, got %v", sess.Result.OverallConfidence)
	}
	if sess.Result.RiskLevel != domain.RiskLow {
		t.Fatalf("0.4 should classify Low, got %v", sess.Result.RiskLevel)
	}
	if len(sess.Modalities) != 1 || sess.Modalities[0] != domain.ModalityText {
		t.Fatalf("expected text modality only, got %v", sess.Modalities)
	}
	if !strings.Contains(sess.Result.ScreeningSummary, "text") {
		t.Fatalf("summary should mention the modality, got %q", sess.Result.ScreeningSummary)
	}
}

func TestScreen_PartialFailureAbsorbed(t *testing.T) {
	repo := &fakeRepo{}
	log := &fakeErrorLog{}
	an := fakeAnalyzers{
		results: map[domain.Modality]domain.ModalityResult{
			domain.ModalityText:   {Confidence: 0.6},
			domain.ModalitySpeech: {Confidence: 0.6},
		},
		errs: map[domain.Modality]error{
			domain.ModalityHandwriting: errors.New("vision backend unavailable"),
		},
	}
	svc := newTestService(an, repo, log)

	sess, err := svc.Screen(context.Background(), ScreenCommand{
		TenantID:  "t1",
		Text:      "some text",
		AudioPath: "/tmp/reading.wav",
		ImagePath: "/tmp/page.png",
	})
	if err != nil {
		t.Fatalf("one failing modality must not abort the pipeline: %v", err)
	}
	if len(sess.ModalityResults) != 3 {
		t.Fatalf("expected 3 modality results, got %d", len(sess.ModalityResults))
	}

	var hw domain.ModalityResult
	for _, r := range sess.ModalityResults {
		if r.Modality == domain.ModalityHandwriting {
			hw = r
		}
	}
	if hw.Error == "" || hw.Confidence != 0.5 {
		t.Fatalf("failed modality must carry error and neutral confidence, got %+v", hw)
	}
	if sess.Status != domain.StatusSuccess {
		t.Fatalf("pipeline should complete despite partial failure, status %v", sess.Status)
	}
	if len(log.entries) == 0 {
		t.Fatalf("modality failure should be recorded in the error log")
	}
	// 0.6, 0.5, 0.6 → mean ~0.5667 minus small variance penalty
	if sess.Result.OverallConfidence >= 0.6 || sess.Result.OverallConfidence <= 0.0 {
		t.Fatalf("aggregate out of expected range: %v", sess.Result.OverallConfidence)
	}
}

func TestScreen_MergeFollowsModalityOrder(t *testing.T) {
	repo := &fakeRepo{}
	an := fakeAnalyzers{results: map[domain.Modality]domain.ModalityResult{
		domain.ModalityText:        {Confidence: 0.4, Recommendations: []string{"text rec"}},
		domain.ModalityHandwriting: {Confidence: 0.4, Recommendations: []string{"handwriting rec"}},
		domain.ModalitySpeech:      {Confidence: 0.4, Recommendations: []string{"speech rec"}},
	}}
	svc := newTestService(an, repo, nil)

	sess, err := svc.Screen(context.Background(), ScreenCommand{
		TenantID:  "t1",
		Text:      "abc",
		AudioPath: "/tmp/a.wav",
		ImagePath: "/tmp/i.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs := sess.Result.Recommendations
	if len(recs) < 3 || recs[0] != "text rec" || recs[1] != "handwriting rec" || recs[2] != "speech rec" {
		t.Fatalf("merge must follow text, handwriting, speech order; got %v", recs)
	}
}

func TestScreen_FinalSaveFailureMarksFailed(t *testing.T) {
	repo := &fakeRepo{failAfter: 1} // initial save succeeds, final save fails
	an := fakeAnalyzers{results: map[domain.Modality]domain.ModalityResult{
		domain.ModalityText: {Confidence: 0.4},
	}}
	svc := newTestService(an, repo, nil)

	if _, err := svc.Screen(context.Background(), ScreenCommand{TenantID: "t1", Text: "abc"}); err == nil {
		t.Fatalf("expected final save failure to surface")
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0] != domain.StatusFailed {
		t.Fatalf("session must be marked failed when the result cannot be stored, got %v", repo.statusUpdates)
	}
}

func TestScreen_TimeoutAbsorbedLikeAnyFailure(t *testing.T) {
	repo := &fakeRepo{}
	log := &fakeErrorLog{}
	an := fakeAnalyzers{
		results: map[domain.Modality]domain.ModalityResult{
			domain.ModalityText: {Confidence: 0.6},
		},
		errs: map[domain.Modality]error{
			domain.ModalitySpeech: context.DeadlineExceeded,
		},
	}
	svc := newTestService(an, repo, log)

	sess, err := svc.Screen(context.Background(), ScreenCommand{
		TenantID:  "t1",
		Text:      "some text",
		AudioPath: "/tmp/reading.wav",
	})
	if err != nil {
		t.Fatalf("a timed-out modality must not abort the pipeline: %v", err)
	}

	var sp domain.ModalityResult
	for _, r := range sess.ModalityResults {
		if r.Modality == domain.ModalitySpeech {
			sp = r
		}
	}
	if sp.Confidence != 0.5 || !strings.Contains(sp.Error, "deadline") {
		t.Fatalf("timed-out modality must carry the error and neutral confidence, got %+v", sp)
	}
	if sess.Status != domain.StatusSuccess {
		t.Fatalf("pipeline should complete despite the timeout, status %v", sess.Status)
	}
	if len(log.entries) == 0 {
		t.Fatalf("timeout should be recorded in the error log")
	}
}

func TestModalityErrors_ReadsAuditLog(t *testing.T) {
	log := &fakeErrorLog{entries: []*screenerrdomain.ModalityError{
		{TenantID: "t1", SessionID: "s1", Modality: "speech", Phase: "timeout", Message: "deadline exceeded"},
	}}
	svc := newTestService(fakeAnalyzers{}, &fakeRepo{}, log)

	list, err := svc.ModalityErrors(context.Background(), "t1", "s1", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Phase != "timeout" {
		t.Fatalf("expected the stored audit entry back, got %v", list)
	}

	svc.Errors = nil
	list, err = svc.ModalityErrors(context.Background(), "t1", "s1", 20)
	if err != nil || list != nil {
		t.Fatalf("nil error log should be a no-op, got %v %v", list, err)
	}
}

func TestScreen_PersistsRunningThenFinal(t *testing.T) {
	repo := &fakeRepo{}
	an := fakeAnalyzers{results: map[domain.Modality]domain.ModalityResult{
		domain.ModalityText: {Confidence: 0.9},
	}}
	svc := newTestService(an, repo, nil)

	if _, err := svc.Screen(context.Background(), ScreenCommand{TenantID: "t1", Text: "abc"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.saved) != 2 {
		t.Fatalf("expected initial + final save, got %d", len(repo.saved))
	}
	if repo.saved[0].Status != domain.StatusRunning {
		t.Fatalf("first save should be running, got %v", repo.saved[0].Status)
	}
	final := repo.last()
	if final.Status != domain.StatusSuccess || final.Result.RiskLevel != domain.RiskHigh {
		t.Fatalf("final save incomplete: %+v", final)
	}
}
