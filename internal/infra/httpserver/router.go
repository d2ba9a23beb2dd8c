package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	appreports "github.com/dyslexiacare/screening/internal/application/reports"
	appscreenings "github.com/dyslexiacare/screening/internal/application/screenings"
	apptts "github.com/dyslexiacare/screening/internal/application/tts"
	domai "github.com/dyslexiacare/screening/internal/domain/ai"
	domain "github.com/dyslexiacare/screening/internal/domain/screenings"
	"github.com/dyslexiacare/screening/internal/middleware"
)

const maxUploadMemory = 10 << 20

type Router struct {
	screeningsSvc *appscreenings.Service
	reportsSvc    *appreports.Service
	ttsSvc        *apptts.Service
}

func NewRouter(screeningsSvc *appscreenings.Service, reportsSvc *appreports.Service, ttsSvc *apptts.Service) http.Handler {
	r := &Router{screeningsSvc: screeningsSvc, reportsSvc: reportsSvc, ttsSvc: ttsSvc}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/screenings", r.wrap(r.handleScreen))
		rt.Get("/screenings/latest", r.wrap(r.handleLatest))
		rt.Get("/screenings/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/reports", r.wrap(r.handleGenerateReport))
		rt.Get("/reports", r.wrap(r.handleListReports))
		rt.Get("/screenings/{id}/report", r.wrap(r.handleSessionReport))
		rt.Get("/screenings/{id}/errors", r.wrap(r.handleSessionErrors))
		rt.Post("/tts", r.wrap(r.handleTTS))
		rt.Get("/tts/latest", r.wrap(r.handleTTSLatest))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks client-side input problems so wrap maps them to 400.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	if err == nil {
		return nil
	}
	return badRequestError{err: err}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domain.ErrNoInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			var br badRequestError
			if errors.As(err, &br) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/screenings
// Multipart form: text, expected_text, user_id fields plus optional
// audio and image file parts.
func (r *Router) handleScreen(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}

	if err := req.ParseMultipartForm(maxUploadMemory); err != nil {
		return badRequest(fmt.Errorf("parsing multipart form: %w", err))
	}

	text := middleware.SanitizeText(req.FormValue("text"))
	expected := middleware.SanitizeText(req.FormValue("expected_text"))
	userID := req.FormValue("user_id")
	if err := middleware.ValidateUserID(userID); err != nil {
		return badRequest(err)
	}

	var audioPath, imagePath string
	file, header, present, err := openUpload(req, "audio")
	if err != nil {
		return err
	}
	if present {
		if err := middleware.ValidateAudioUpload(header.Filename, header.Size); err != nil {
			file.Close()
			return badRequest(err)
		}
		audioPath, err = saveUpload(file, header)
		file.Close()
		if err != nil {
			return err
		}
	}
	file, header, present, err = openUpload(req, "image")
	if err != nil {
		cleanupTemp(audioPath)
		return err
	}
	if present {
		if err := middleware.ValidateImageUpload(header.Filename, header.Size); err != nil {
			file.Close()
			cleanupTemp(audioPath)
			return badRequest(err)
		}
		imagePath, err = saveUpload(file, header)
		file.Close()
		if err != nil {
			cleanupTemp(audioPath)
			return err
		}
	}

	middleware.IncrementScreenings()
	middleware.IncrementScreeningsRunning()
	defer middleware.DecrementScreeningsRunning()

	session, err := r.screeningsSvc.Screen(req.Context(), appscreenings.ScreenCommand{
		TenantID:     tenant,
		Text:         text,
		ExpectedText: expected,
		UserID:       userID,
		AudioPath:    audioPath,
		ImagePath:    imagePath,
	})
	if err != nil {
		middleware.IncrementScreeningsFailed()
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(session)
}

// GET /v1/{tenant}/screenings/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.screeningsSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/screenings/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		return badRequest(err)
	}

	session, err := r.screeningsSvc.Get(req.Context(), tenant, domain.SessionID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(session)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	summary, err := r.screeningsSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/reports
// Body: {"session_id": "<id>"}
func (r *Router) handleGenerateReport(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(err)
	}
	if body.SessionID == "" {
		return badRequest(fmt.Errorf("session_id is required"))
	}

	rep, err := r.reportsSvc.AnalyzeAndStore(req.Context(), tenant, body.SessionID)
	if err != nil {
		return err
	}
	middleware.IncrementReports()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// GET /v1/{tenant}/reports?page=&page_size=
func (r *Router) handleListReports(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.reportsSvc.ListReports(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/screenings/{id}/errors?limit=20
func (r *Router) handleSessionErrors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		return badRequest(err)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.screeningsSvc.ModalityErrors(req.Context(), tenant, id, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/screenings/{id}/report
func (r *Router) handleSessionReport(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		return badRequest(err)
	}

	rep, err := r.reportsSvc.LatestBySession(req.Context(), tenant, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rep)
}

// POST /v1/{tenant}/tts
// Body: {"text": "...", "speed": 1.0, "phonics_mode": false, "language": "en"}
func (r *Router) handleTTS(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		Text        string  `json:"text"`
		Speed       float64 `json:"speed"`
		PhonicsMode bool    `json:"phonics_mode"`
		Language    string  `json:"language"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(err)
	}
	if middleware.SanitizeText(body.Text) == "" {
		return badRequest(fmt.Errorf("text is required"))
	}

	sess, err := r.ttsSvc.Synthesize(req.Context(), apptts.SynthesizeCommand{
		TenantID:    tenant,
		Text:        middleware.SanitizeText(body.Text),
		Speed:       body.Speed,
		PhonicsMode: body.PhonicsMode,
		Language:    body.Language,
	})
	if err != nil {
		return err
	}
	middleware.IncrementTTS()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(sess)
}

// GET /v1/{tenant}/tts/latest?limit=20
func (r *Router) handleTTSLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.ttsSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// openUpload fetches one multipart file part. An absent part is not an
// error; a present-but-unreadable part is reported as a 400 instead of being
// silently dropped.
func openUpload(req *http.Request, field string) (multipart.File, *multipart.FileHeader, bool, error) {
	file, header, err := req.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, false, nil
		}
		return nil, nil, false, badRequest(fmt.Errorf("reading %s part: %w", field, err))
	}
	return file, header, true, nil
}

// saveUpload copies one multipart file to a temp path, keeping the original
// extension so the analyzers and storage layer can detect the format.
func saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func cleanupTemp(path string) {
	if path != "" {
		os.Remove(path)
	}
}
