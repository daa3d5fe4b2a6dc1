// Package service orchestrates analysis requests: validation, sample
// retrieval, per-variable statistics, and optional report publishing and
// caching.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

// Service runs one analysis request end to end. The HTTP adapter and the
// caching decorator both speak this interface.
type Service interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Report, error)
}

// ReportPublisher forwards completed reports to an external sink. Optional;
// publish failures are logged and never fail the request.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.Report) error
}

// Analyzer implements Service over a SampleSource.
type Analyzer struct {
	source    domain.SampleSource
	settings  domain.Settings
	publisher ReportPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an Analyzer. Pass a nil publisher to disable report publishing.
func New(source domain.SampleSource, settings domain.Settings, publisher ReportPublisher, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		source:    source,
		settings:  settings,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness reports whether the analyzer can serve requests.
func (a *Analyzer) CheckReadiness(_ context.Context) error {
	if a.source == nil {
		return errors.New("no sample source configured")
	}
	return nil
}

// Analyze validates the request and computes statistics for every selected
// variable. A variable whose source returns no data is recorded as a
// failure without affecting its siblings; only validation errors fail the
// whole request.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Report, error) {
	started := time.Now()

	req.Normalize(a.settings)
	if err := req.Validate(a.settings); err != nil {
		a.metrics.RequestsRejected.Inc()
		return domain.Report{}, err
	}

	report := domain.Report{
		Location:    req.Location,
		Date:        req.Date.Format("01-02"),
		WindowDays:  req.WindowDays,
		Years:       req.Years,
		GeneratedAt: domain.Now().UTC(),
	}

	for _, sel := range req.Variables {
		result, err := a.analyzeVariable(ctx, req, sel)
		if err != nil {
			outcome := "error"
			if errors.Is(err, domain.ErrNoData) {
				outcome = "no_data"
			}
			a.metrics.AnalysesTotal.WithLabelValues(string(sel.Variable), outcome).Inc()
			a.logger.Warn("variable analysis failed",
				"variable", string(sel.Variable),
				"error", err,
			)
			report.Failures = append(report.Failures, domain.VariableFailure{
				Variable: sel.Variable,
				Reason:   err.Error(),
			})
			continue
		}

		a.metrics.AnalysesTotal.WithLabelValues(string(sel.Variable), "success").Inc()
		report.Results = append(report.Results, result)
	}

	a.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())

	if a.publisher != nil && len(report.Results) > 0 {
		if err := a.publisher.PublishReport(ctx, report); err != nil {
			a.logger.Warn("report publish failed", "error", err)
		}
	}

	return report, nil
}

func (a *Analyzer) analyzeVariable(ctx context.Context, req domain.AnalysisRequest, sel domain.VariableSelection) (domain.AnalysisResult, error) {
	samples, err := a.source.Samples(ctx, domain.SampleQuery{
		Location:   req.Location,
		Date:       req.Date,
		WindowDays: req.WindowDays,
		Variable:   sel.Variable,
		Years:      req.Years,
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return domain.Analyze(sel.Variable, samples, sel.EffectiveThreshold())
}
