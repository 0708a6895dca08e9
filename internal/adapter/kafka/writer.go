package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/geomag-wdc-etl/internal/config"
	"github.com/couchcryptid/geomag-wdc-etl/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes one message per hourly XYZ row.
// It implements pipeline.Loader.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger

	// attempts per batch; backoff doubles from initialBackoff up to maxBackoff.
	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// hourlyMessage is the JSON value of a published row.
type hourlyMessage struct {
	Station string       `json:"station"`
	Time    time.Time    `json:"time"`
	X       domain.Value `json:"x"`
	Y       domain.Value `json:"y"`
	Z       domain.Value `json:"z"`
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, cfg.KafkaBatchSize, logger)
}

func newWriter(w messageWriter, batchSize int, logger *slog.Logger) *Writer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Writer{
		writer:         w,
		batchSize:      batchSize,
		logger:         logger,
		attempts:       3,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

func (w *Writer) Name() string { return "kafka" }

// Load serializes the table and publishes it in batches of batchSize
// messages. Rows are keyed by station so one station stays on one partition.
func (w *Writer) Load(ctx context.Context, table domain.XYZTable) error {
	msgs := make([]kafkago.Message, 0, w.batchSize)
	for _, r := range table.Rows {
		msg, err := serializeToMessage(table.Code, r)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == w.batchSize {
			if err := w.write(ctx, msgs); err != nil {
				return err
			}
			msgs = msgs[:0]
		}
	}
	if len(msgs) > 0 {
		if err := w.write(ctx, msgs); err != nil {
			return err
		}
	}
	w.logger.Debug("kafka batch published", "station", table.Code, "rows", table.Len())
	return nil
}

// write publishes one batch, retrying with exponential backoff until the
// attempts run out or ctx is done.
func (w *Writer) write(ctx context.Context, msgs []kafkago.Message) error {
	backoff := w.initialBackoff
	var err error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, msgs...); err == nil {
			return nil
		}
		if attempt == w.attempts {
			break
		}
		w.logger.Warn("kafka write failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("write messages: %w", errors.Join(err, ctx.Err()))
		}
		backoff = retry.NextBackoff(backoff, w.maxBackoff)
	}
	return fmt.Errorf("write messages after %d attempts: %w", w.attempts, err)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one hourly row into a Kafka message.
func serializeToMessage(code string, r domain.XYZRow) (kafkago.Message, error) {
	data, err := json.Marshal(hourlyMessage{Station: code, Time: r.Time, X: r.X, Y: r.Y, Z: r.Z})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize xyz row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(code),
		Value: data,
		Time:  r.Time,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(code)},
			{Key: "hour", Value: []byte(r.Time.Format(time.RFC3339))},
		},
	}, nil
}
