// Package power implements domain.SampleSource against the NASA POWER
// daily point API, the production replacement for the synthetic demo
// source. POWER serves MERRA-2 reanalysis and GPM IMERG precipitation at
// daily resolution for any coordinate.
package power

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

// DefaultBaseURL is the public POWER API endpoint.
const DefaultBaseURL = "https://power.larc.nasa.gov"

// fillValue is the POWER sentinel for missing observations.
const fillValue = -999.0

// Client fetches historical daily observations from NASA POWER.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a POWER client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Samples fetches the query's year range in a single request and pools the
// ±window days around the target date of each year. Fill values are
// dropped. A pooled sample keeps the year of the target date it belongs
// to, even when the window crosses a year boundary.
func (c *Client) Samples(ctx context.Context, q domain.SampleQuery) ([]domain.Sample, error) {
	info, ok := q.Variable.Info()
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", string(q.Variable))
	}
	if info.PowerParameter == "" {
		return nil, fmt.Errorf("%s is not served by the POWER API", info.Name)
	}

	endYear := domain.Now().Year() - 1
	startYear := endYear - q.Years + 1

	target := func(year int) time.Time {
		return time.Date(year, q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, time.UTC)
	}
	spanStart := target(startYear).AddDate(0, 0, -q.WindowDays)
	spanEnd := target(endYear).AddDate(0, 0, q.WindowDays)

	daily, err := c.fetchDaily(ctx, info.PowerParameter, q.Location, spanStart, spanEnd)
	if err != nil {
		return nil, err
	}

	var samples []domain.Sample
	for year := startYear; year <= endYear; year++ {
		anchor := target(year)
		for offset := -q.WindowDays; offset <= q.WindowDays; offset++ {
			day := anchor.AddDate(0, 0, offset)
			raw, ok := daily[day.Format("20060102")]
			if !ok || raw == fillValue {
				continue
			}
			samples = append(samples, domain.Sample{
				Year:  year,
				Value: convert(q.Variable, raw),
			})
		}
	}

	if len(samples) == 0 {
		return nil, domain.ErrNoData
	}

	c.logger.Debug("power samples fetched",
		"parameter", info.PowerParameter,
		"years", q.Years,
		"samples", len(samples),
	)
	return samples, nil
}

func (c *Client) fetchDaily(ctx context.Context, parameter string, loc domain.Location, start, end time.Time) (map[string]float64, error) {
	params := url.Values{
		"parameters": {parameter},
		"community":  {"RE"},
		"latitude":   {strconv.FormatFloat(loc.Latitude, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(loc.Longitude, 'f', 4, 64)},
		"start":      {start.Format("20060102")},
		"end":        {end.Format("20060102")},
		"format":     {"JSON"},
	}
	fullURL := fmt.Sprintf("%s/api/temporal/daily/point?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	began := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.SourceFetchDuration.WithLabelValues("power").Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.SourceRequests.WithLabelValues("power", "error").Inc()
		return nil, fmt.Errorf("power request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.SourceRequests.WithLabelValues("power", "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("power API error: status %d: %s", resp.StatusCode, body)
	}

	var powerResp response
	if err := json.NewDecoder(resp.Body).Decode(&powerResp); err != nil {
		c.metrics.SourceRequests.WithLabelValues("power", "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	daily, ok := powerResp.Properties.Parameter[parameter]
	if !ok {
		c.metrics.SourceRequests.WithLabelValues("power", "empty").Inc()
		return nil, domain.ErrNoData
	}

	c.metrics.SourceRequests.WithLabelValues("power", "success").Inc()
	return daily, nil
}

// convert maps POWER native units to display units: T2M °C → °F,
// PRECTOTCORR mm/day → inches, WS10M m/s → mph, RH2M stays %.
func convert(v domain.Variable, value float64) float64 {
	switch v {
	case domain.VariableTemperature:
		return value*9/5 + 32
	case domain.VariablePrecipitation:
		return value / 25.4
	case domain.VariableWindSpeed:
		return value * 2.23694
	default:
		return value
	}
}

// POWER API response types.

type response struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}
