// Package http exposes the analysis REST API plus the health, readiness,
// and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/export"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

// AnalyzeService runs analysis requests. Implemented by service.Analyzer
// and its caching decorator.
type AnalyzeService interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Report, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the analysis API over HTTP.
type Server struct {
	httpServer *http.Server
	svc        AnalyzeService
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the analysis, export, catalog,
// health, readiness, and metrics routes.
func NewServer(addr string, svc AnalyzeService, ready ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/v1/analyze/export", s.handleExport)
	mux.HandleFunc("GET /api/v1/variables", s.handleVariables)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Request payloads.

type locationPayload struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type variablePayload struct {
	Name      string   `json:"name"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type analyzePayload struct {
	Location   locationPayload   `json:"location"`
	Date       string            `json:"date"` // YYYY-MM-DD or MM-DD
	WindowDays *int              `json:"window_days,omitempty"`
	Years      *int              `json:"years,omitempty"`
	Variables  []variablePayload `json:"variables"`
}

type exportPayload struct {
	analyzePayload
	Format string `json:"format"`
}

// toDomain maps the payload onto a domain request. Unknown variable names
// pass through so validation can report every problem at once.
func (p analyzePayload) toDomain() (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		Location: domain.Location{
			Name:      p.Location.Name,
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		},
		WindowDays: -1,
	}

	if p.Date != "" {
		date, err := parseDate(p.Date)
		if err != nil {
			return domain.AnalysisRequest{}, err
		}
		req.Date = date
	}
	if p.Years != nil {
		req.Years = *p.Years
	}
	if p.WindowDays != nil {
		req.WindowDays = *p.WindowDays
	}
	for _, v := range p.Variables {
		req.Variables = append(req.Variables, domain.VariableSelection{
			Variable:  domain.Variable(v.Name),
			Threshold: v.Threshold,
		})
	}
	return req, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or MM-DD", s)
}

// Handlers.

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	report, ok := s.runAnalysis(w, r, nil)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var payload exportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	report, ok := s.runAnalysis(w, r, &payload.analyzePayload)
	if !ok {
		return
	}

	var (
		data        []byte
		err         error
		contentType string
		extension   string
	)
	switch payload.Format {
	case export.FormatCSV, "":
		data, err = export.SummaryCSV(report)
		contentType, extension = "text/csv", "csv"
	case export.FormatTimeSeries:
		data, err = export.TimeSeriesCSV(report)
		contentType, extension = "text/csv", "csv"
	case export.FormatJSON:
		data, err = export.JSON(report)
		contentType, extension = "application/json", "json"
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown export format %q", payload.Format))
		return
	}
	if err != nil {
		s.logger.Error("export failed", "format", payload.Format, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("export failed"))
		return
	}

	format := payload.Format
	if format == "" {
		format = export.FormatCSV
	}
	s.metrics.ExportsTotal.WithLabelValues(format).Inc()

	filename := fmt.Sprintf("weather-analysis-%s.%s", report.Date, extension)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // best-effort download body
}

// runAnalysis decodes the request (unless payload is pre-decoded), runs
// the service, and writes the error response on failure. Returns the
// report and whether the caller should proceed.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, payload *analyzePayload) (domain.Report, bool) {
	if payload == nil {
		payload = &analyzePayload{}
		if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return domain.Report{}, false
		}
	}

	req, err := payload.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return domain.Report{}, false
	}

	report, err := s.svc.Analyze(r.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr)
			return domain.Report{}, false
		}
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("analysis failed"))
		return domain.Report{}, false
	}
	return report, true
}

func (s *Server) handleVariables(w http.ResponseWriter, _ *http.Request) {
	type variableEntry struct {
		ID string `json:"id"`
		domain.VariableInfo
	}

	entries := make([]variableEntry, 0, len(domain.Variables()))
	for _, v := range domain.Variables() {
		info, _ := v.Info()
		entries = append(entries, variableEntry{ID: string(v), VariableInfo: info})
	}
	writeJSON(w, http.StatusOK, map[string]any{"variables": entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
