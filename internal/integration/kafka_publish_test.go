//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/lmr105/supply-interruption-service/internal/adapter/kafka"
	"github.com/lmr105/supply-interruption-service/internal/analysis"
	"github.com/lmr105/supply-interruption-service/internal/config"
	"github.com/lmr105/supply-interruption-service/internal/domain"
	"github.com/lmr105/supply-interruption-service/internal/observability"
)

const testSummaryTopic = "test-analysis-summaries"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka in a container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.7.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker addresses")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublishRunSummary runs a real analysis, publishes its summary through
// the adapter, and verifies the record that lands on the topic.
func TestPublishRunSummary(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSummaryTopic)

	cfg := &config.Config{
		Kafka: config.KafkaConfig{
			Enabled: true,
			Brokers: []string{broker},
			Topic:   testSummaryTopic,
		},
	}

	base := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	readings := make([]domain.Reading, 0, 6)
	for i, p := range []float64{30, 10, 10, 10, 30, 30} {
		readings = append(readings, domain.Reading{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Pressure:  p,
		})
	}

	analyzer := analysis.New(discardLogger(), observability.NewMetricsForTesting(), 2)
	result, err := analyzer.Analyze(ctx, readings, []float64{120, 120, 50}, analysis.DefaultParameters(100))
	require.NoError(t, err)
	require.Len(t, result.Outages, 1)

	publisher := kafka.NewPublisher(cfg, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.Publish(ctx, result))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSummaryTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from summary topic")

	assert.Equal(t, result.RunID, string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, result.RunID, headers["run_id"])
	_, err = time.Parse(time.RFC3339, headers["analyzed_at"])
	assert.NoError(t, err, "analyzed_at should be valid RFC3339")

	var summary kafka.Summary
	require.NoError(t, json.Unmarshal(msg.Value, &summary))
	assert.Equal(t, result.RunID, summary.RunID)
	assert.Equal(t, 2, summary.Groups)
	assert.Equal(t, 1, summary.Outages)
	assert.InDelta(t, result.TotalImpact, summary.TotalImpact, 1e-9)
	assert.True(t, summary.WindowStart.Equal(base))
	assert.True(t, summary.WindowEnd.Equal(base.Add(5*time.Hour)))
}
