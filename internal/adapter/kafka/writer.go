// Package kafka publishes completed analysis reports to a sink topic so
// downstream consumers (archival, notification) can pick them up. The
// publisher is optional; the service runs fully without it.
package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-probability-service/internal/config"
	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

// Publisher produces report messages to a Kafka topic.
// It implements service.ReportPublisher.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// PublishReport serializes and publishes one analysis report.
func (p *Publisher) PublishReport(ctx context.Context, report domain.Report) error {
	msg, err := serializeReport(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	p.metrics.ReportsPublished.Inc()
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeReport marshals a report into a Kafka message. The key is a
// deterministic digest of location, date, and years so replays of the same
// request land on the same partition.
func serializeReport(report domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}

	variables := make([]string, len(report.Results))
	for i, r := range report.Results {
		variables[i] = string(r.Variable)
	}

	return kafkago.Message{
		Key:   []byte(reportKey(report)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variables", Value: []byte(strings.Join(variables, ","))},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}

func reportKey(report domain.Report) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%.4f|%.4f|%s|%d",
		report.Location.Latitude,
		report.Location.Longitude,
		report.Date,
		report.Years,
	))
	return hex.EncodeToString(h[:])
}
