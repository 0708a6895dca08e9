//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/geomag-wdc-etl/internal/adapter/kafka"
	"github.com/couchcryptid/geomag-wdc-etl/internal/config"
	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
	"github.com/couchcryptid/geomag-wdc-etl/internal/observability"
	"github.com/couchcryptid/geomag-wdc-etl/internal/pipeline"
)

const testTopic = "test-xyz-hourly"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("geomag-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

func writeFixture(t *testing.T) string {
	t.Helper()
	var records []domain.RawRecord
	for _, comp := range []domain.Component{domain.ComponentH, domain.ComponentD, domain.ComponentZ} {
		rec := domain.RawRecord{Code: "ESK", Component: comp, Century: 19, Year: 88, Month: 9, Day: 21, Base: 174}
		if comp == domain.ComponentD {
			rec.Base = -6
		}
		for h := range rec.Hourly {
			rec.Hourly[h] = 20 + h
		}
		rec.Hourly[3] = domain.MissingSentinel
		records = append(records, rec)
	}
	path := filepath.Join(t.TempDir(), "esk198809.wdc")
	require.NoError(t, os.WriteFile(path, []byte(domain.FormatRecords(domain.CenturyLayout{}, records)), 0o600))
	return path
}

// TestPipelineToKafka runs a WDC file through the pipeline into a real broker
// and reads every hourly row back from the topic.
func TestPipelineToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic, KafkaBatchSize: 10}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	reader := pipeline.NewReader(discardLogger(), metrics, pipeline.ReaderOptions{Concurrency: 1})
	p := pipeline.New(reader, []pipeline.Loader{writer}, discardLogger(), metrics)

	table, err := p.Run(ctx, []string{writeFixture(t)})
	require.NoError(t, err)
	require.Equal(t, domain.HoursPerDay, table.Len())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for i := range domain.HoursPerDay {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, "ESK", string(msg.Key))

		var got struct {
			Station string    `json:"station"`
			Time    time.Time `json:"time"`
			X       *float64  `json:"x"`
			Z       *float64  `json:"z"`
		}
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, table.Rows[i].Time, got.Time.UTC())
		if i == 3 {
			assert.Nil(t, got.X)
			assert.Nil(t, got.Z)
		} else {
			assert.NotNil(t, got.X)
			assert.NotNil(t, got.Z)
		}
	}
}
