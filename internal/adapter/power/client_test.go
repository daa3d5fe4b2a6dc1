package power

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(), logger)
}

// freezeYear pins domain.Now so the queried year range is stable.
func freezeYear(t *testing.T, year int) {
	t.Helper()
	fake := clockwork.NewFakeClockAt(time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })
}

func powerResponse(parameter string, daily map[string]float64) string {
	body := map[string]any{
		"properties": map[string]any{
			"parameter": map[string]any{parameter: daily},
		},
	}
	out, _ := json.Marshal(body)
	return string(out)
}

func testQuery(variable domain.Variable, years, window int) domain.SampleQuery {
	return domain.SampleQuery{
		Location:   domain.Location{Name: "Austin", Latitude: 30.2672, Longitude: -97.7431},
		Date:       time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
		WindowDays: window,
		Variable:   variable,
		Years:      years,
	}
}

func TestSamples_ConvertsAndPoolsWindow(t *testing.T) {
	freezeYear(t, 2026)

	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"parameters": r.URL.Query().Get("parameters"),
			"community":  r.URL.Query().Get("community"),
			"latitude":   r.URL.Query().Get("latitude"),
			"start":      r.URL.Query().Get("start"),
			"end":        r.URL.Query().Get("end"),
		}
		// 2 years, ±1 day around July 4. 0°C and 10°C convert to 32°F
		// and 50°F.
		fmt.Fprint(w, powerResponse("T2M", map[string]float64{
			"20240703": 0.0,
			"20240704": 10.0,
			"20250704": 20.0,
		}))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	samples, err := client.Samples(context.Background(), testQuery(domain.VariableTemperature, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, "T2M", gotQuery["parameters"])
	assert.Equal(t, "RE", gotQuery["community"])
	assert.Equal(t, "30.2672", gotQuery["latitude"])
	assert.Equal(t, "20240703", gotQuery["start"])
	assert.Equal(t, "20250705", gotQuery["end"])

	require.Len(t, samples, 3)
	assert.Equal(t, domain.Sample{Year: 2024, Value: 32.0}, samples[0])
	assert.Equal(t, domain.Sample{Year: 2024, Value: 50.0}, samples[1])
	assert.Equal(t, 2025, samples[2].Year)
	assert.InDelta(t, 68.0, samples[2].Value, 1e-9)
}

func TestSamples_SkipsFillValues(t *testing.T) {
	freezeYear(t, 2026)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, powerResponse("WS10M", map[string]float64{
			"20240704": -999.0,
			"20250704": 10.0,
		}))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	samples, err := client.Samples(context.Background(), testQuery(domain.VariableWindSpeed, 2, 0))
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.Equal(t, 2025, samples[0].Year)
	assert.InDelta(t, 22.3694, samples[0].Value, 1e-4) // 10 m/s in mph
}

func TestSamples_AirQualityUnsupported(t *testing.T) {
	client := testClient(t, "http://unused.invalid")

	_, err := client.Samples(context.Background(), testQuery(domain.VariableAirQuality, 10, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not served by the POWER API")
}

func TestSamples_UnknownVariable(t *testing.T) {
	client := testClient(t, "http://unused.invalid")

	_, err := client.Samples(context.Background(), testQuery(domain.Variable("ozone"), 10, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable")
}

func TestSamples_APIError(t *testing.T) {
	freezeYear(t, 2026)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Samples(context.Background(), testQuery(domain.VariableTemperature, 2, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSamples_EmptyParameterMap(t *testing.T) {
	freezeYear(t, 2026)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"properties":{"parameter":{}}}`)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Samples(context.Background(), testQuery(domain.VariableTemperature, 2, 0))
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestSamples_NoObservationsInWindow(t *testing.T) {
	freezeYear(t, 2026)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, powerResponse("T2M", map[string]float64{
			"20240101": 5.0, // outside the July window
		}))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Samples(context.Background(), testQuery(domain.VariableTemperature, 2, 0))
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := testClient(t, "")
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}
