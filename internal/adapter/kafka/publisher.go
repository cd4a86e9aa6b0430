// Package kafka publishes compact summaries of completed analysis runs to a
// Kafka topic, for downstream systems that track outage history. Publishing
// is optional and advisory; the analysis result never depends on it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/lmr105/supply-interruption-service/internal/analysis"
	"github.com/lmr105/supply-interruption-service/internal/config"
)

// Summary is the record published per run: enough to chart outage trends
// without shipping the full per-group tables.
type Summary struct {
	RunID       string    `json:"run_id"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Groups      int       `json:"groups"`
	Outages     int       `json:"outages"`
	TotalImpact float64   `json:"total_impact"`
}

// SummaryFromResult projects a full analysis result down to its summary.
func SummaryFromResult(result *analysis.Result) Summary {
	return Summary{
		RunID:       result.RunID,
		AnalyzedAt:  result.AnalyzedAt,
		WindowStart: result.WindowStart,
		WindowEnd:   result.WindowEnd,
		Groups:      len(result.Groups),
		Outages:     len(result.Outages),
		TotalImpact: result.TotalImpact,
	}
}

// Publisher produces run summaries to the configured topic.
// It implements httpapi.ResultPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the summary topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the run summary and writes it with full-ISR acks.
func (p *Publisher) Publish(ctx context.Context, result *analysis.Result) error {
	msg, err := serializeToMessage(SummaryFromResult(result))
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	p.logger.Debug("run summary published", "run_id", result.RunID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Summary into a Kafka message keyed by run ID.
func serializeToMessage(summary Summary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(summary.RunID)},
			{Key: "analyzed_at", Value: []byte(summary.AnalyzedAt.Format(time.RFC3339))},
		},
	}, nil
}
