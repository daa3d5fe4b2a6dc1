package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

type stubService struct {
	report  domain.Report
	err     error
	lastReq domain.AnalysisRequest
}

func (s *stubService) Analyze(_ context.Context, req domain.AnalysisRequest) (domain.Report, error) {
	s.lastReq = req
	if s.err != nil {
		return domain.Report{}, s.err
	}
	return s.report, nil
}

type stubReadiness struct {
	err error
}

func (s *stubReadiness) CheckReadiness(context.Context) error {
	return s.err
}

func testServer(t *testing.T, svc *stubService, ready *stubReadiness) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", svc, ready, observability.NewMetricsForTesting(), logger)
}

func sampleReport() domain.Report {
	return domain.Report{
		Location:   domain.Location{Name: "Austin", Latitude: 30.2672, Longitude: -97.7431},
		Date:       "07-04",
		WindowDays: 7,
		Years:      20,
		Results: []domain.AnalysisResult{
			{
				Variable:             domain.VariableTemperature,
				Name:                 "Temperature",
				Units:                "°F",
				DataSource:           "MERRA-2",
				Mean:                 92.5,
				Threshold:            90,
				ExceedanceProbability: 65.0,
				RiskLevel:            domain.RiskHigh,
			},
		},
	}
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHandleAnalyze_Success(t *testing.T) {
	svc := &stubService{report: sampleReport()}
	srv := testServer(t, svc, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.2672, "longitude": -97.7431},
		"date":      "2026-07-04",
		"years":     20,
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Austin", report.Location.Name)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.RiskHigh, report.Results[0].RiskLevel)

	// Request mapping: date parsed, years forwarded, window left for defaults.
	assert.Equal(t, 7, svc.lastReq.Date.Day())
	assert.Equal(t, 20, svc.lastReq.Years)
	assert.Equal(t, -1, svc.lastReq.WindowDays)
}

func TestHandleAnalyze_MonthDayDate(t *testing.T) {
	svc := &stubService{report: sampleReport()}
	srv := testServer(t, svc, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.2672, "longitude": -97.7431},
		"date":      "07-04",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, int(svc.lastReq.Date.Month()))
	assert.Equal(t, 4, svc.lastReq.Date.Day())
}

func TestHandleAnalyze_InvalidDate(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.0, "longitude": -97.0},
		"date":      "July 4th",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid date")
}

func TestHandleAnalyze_ValidationError(t *testing.T) {
	svc := &stubService{err: &domain.ValidationError{Problems: []string{"latitude must be between -90 and 90"}}}
	srv := testServer(t, svc, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze", map[string]any{
		"location":  map[string]any{"name": "Nowhere", "latitude": 120.0, "longitude": 0.0},
		"date":      "07-04",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "latitude must be between")
}

func TestHandleAnalyze_ServiceError(t *testing.T) {
	svc := &stubService{err: errors.New("upstream exploded")}
	srv := testServer(t, svc, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.0, "longitude": -97.0},
		"date":      "07-04",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal detail stays out of the response body.
	assert.NotContains(t, w.Body.String(), "upstream exploded")
}

func TestHandleAnalyze_MalformedJSON(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "decode request")
}

func TestHandleExport_CSVDefault(t *testing.T) {
	svc := &stubService{report: sampleReport()}
	srv := testServer(t, svc, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze/export", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.2672, "longitude": -97.7431},
		"date":      "07-04",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "weather-analysis-07-04.csv")
	assert.Contains(t, w.Body.String(), "location,latitude,longitude")
}

func TestHandleExport_JSON(t *testing.T) {
	svc := &stubService{report: sampleReport()}
	srv := testServer(t, svc, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze/export", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.2672, "longitude": -97.7431},
		"date":      "07-04",
		"format":    "json",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "weather-analysis-07-04.json")

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Austin", report.Location.Name)
}

func TestHandleExport_UnknownFormat(t *testing.T) {
	srv := testServer(t, &stubService{report: sampleReport()}, &stubReadiness{})

	w := postJSON(t, srv, "/api/v1/analyze/export", map[string]any{
		"location":  map[string]any{"name": "Austin", "latitude": 30.0, "longitude": -97.0},
		"date":      "07-04",
		"format":    "xml",
		"variables": []map[string]any{{"name": "temperature"}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown export format")
}

func TestHandleVariables(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variables", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Variables []struct {
			ID               string  `json:"id"`
			Name             string  `json:"name"`
			Units            string  `json:"units"`
			DefaultThreshold float64 `json:"default_threshold"`
		} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Variables, 5)
	assert.Equal(t, "temperature", response.Variables[0].ID)
	assert.Equal(t, "°F", response.Variables[0].Units)
	assert.Equal(t, 90.0, response.Variables[0].DefaultThreshold)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestReadyEndpoint_Ready(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{err: errors.New("no sample source configured")})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "no sample source configured")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t, &stubService{}, &stubReadiness{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
