package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ScreeningsTotal    uint64
	ScreeningsRunning  uint64
	ScreeningsFailed   uint64
	ReportsTotal       uint64
	TTSTotal           uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementScreenings increments total screenings counter
func IncrementScreenings() {
	atomic.AddUint64(&globalMetrics.ScreeningsTotal, 1)
}

// IncrementScreeningsRunning increments running screenings counter
func IncrementScreeningsRunning() {
	atomic.AddUint64(&globalMetrics.ScreeningsRunning, 1)
}

// DecrementScreeningsRunning decrements running screenings counter
func DecrementScreeningsRunning() {
	atomic.AddUint64(&globalMetrics.ScreeningsRunning, ^uint64(0))
}

// IncrementScreeningsFailed increments failed screenings counter
func IncrementScreeningsFailed() {
	atomic.AddUint64(&globalMetrics.ScreeningsFailed, 1)
}

// IncrementReports increments generated report counter
func IncrementReports() {
	atomic.AddUint64(&globalMetrics.ReportsTotal, 1)
}

// IncrementTTS increments TTS synthesis counter
func IncrementTTS() {
	atomic.AddUint64(&globalMetrics.TTSTotal, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"screenings_total":     atomic.LoadUint64(&globalMetrics.ScreeningsTotal),
		"screenings_running":   atomic.LoadUint64(&globalMetrics.ScreeningsRunning),
		"screenings_failed":    atomic.LoadUint64(&globalMetrics.ScreeningsFailed),
		"reports_total":        atomic.LoadUint64(&globalMetrics.ReportsTotal),
		"tts_total":            atomic.LoadUint64(&globalMetrics.TTSTotal),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
