package consumer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dadopl/poc-nocart/internal/checkout-service/projector"
	"github.com/dadopl/poc-nocart/internal/checkout-service/repository"
	"github.com/dadopl/poc-nocart/internal/pkg/event"
	"github.com/dadopl/poc-nocart/internal/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

const GroupID = "checkout-service"

// messageReader is the slice of kafka.Reader the consumer depends on,
// narrowed for tests.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer feeds bus events into the checkout projection. One reader per
// topic; a malformed or unroutable event is dropped and logged, never
// allowed to stop the loop.
type Consumer struct {
	repo    repository.CheckoutOrderRepository
	proj    *projector.Projector
	readers []messageReader
	metrics *metrics.ConsumerMetrics
}

func New(repo repository.CheckoutOrderRepository, m *metrics.ConsumerMetrics, readers ...messageReader) *Consumer {
	return &Consumer{
		repo:    repo,
		proj:    projector.New(),
		readers: readers,
		metrics: m,
	}
}

// NewKafkaReaders builds one reader per projection topic for the checkout
// consumer group.
func NewKafkaReaders(brokers []string, topics []string) []messageReader {
	readers := make([]messageReader, len(topics))
	for i, topic := range topics {
		readers[i] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  GroupID,
			MinBytes: 10e3,
			MaxBytes: 10e6, // 10MB
		})
	}
	return readers
}

// Run blocks until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, reader := range c.readers {
		wg.Add(1)
		go func(r messageReader) {
			defer wg.Done()
			c.consumeLoop(ctx, r)
		}(reader)
	}
	wg.Wait()
}

func (c *Consumer) Close() {
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil {
			slog.Error("error closing kafka reader", slog.String("error", err.Error()))
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, reader messageReader) {
	for {
		if ctx.Err() != nil {
			return
		}
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("error reading message", slog.String("error", err.Error()))
			continue
		}
		c.processMessage(ctx, msg.Value)
	}
}

// processMessage applies one raw envelope. Every failure path drops the
// event and moves on so a poison message cannot wedge the partition.
func (c *Consumer) processMessage(ctx context.Context, raw []byte) {
	env, err := event.FromJSON(raw)
	if err != nil {
		slog.Warn("dropping undecodable event", slog.String("error", err.Error()))
		c.metrics.Dropped.WithLabelValues("decode").Inc()
		return
	}

	sessionID := projector.ExtractSessionID(env)
	if sessionID == "" {
		slog.Warn("dropping event with no routable session id",
			slog.String("event_name", env.EventName),
			slog.String("event_id", env.EventID))
		c.metrics.Dropped.WithLabelValues("no_session_id").Inc()
		return
	}

	order, err := c.repo.FindBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrOrderNotFound) {
		slog.Error("failed to load checkout order",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		c.metrics.Dropped.WithLabelValues("load").Inc()
		return
	}

	start := time.Now()
	order, status, err := c.proj.Apply(order, env)
	if err != nil {
		slog.Warn("dropping unprocessable event",
			slog.String("event_name", env.EventName),
			slog.String("event_id", env.EventID),
			slog.String("error", err.Error()))
		c.metrics.Dropped.WithLabelValues("malformed").Inc()
		return
	}
	c.metrics.ApplyMS.WithLabelValues(env.EventName).Observe(float64(time.Since(start).Milliseconds()))

	if status == projector.StatusDuplicate {
		slog.Debug("event already processed, skipping",
			slog.String("event_id", env.EventID),
			slog.String("event_name", env.EventName))
		c.metrics.Duplicates.Inc()
		return
	}

	if err := c.repo.Save(ctx, order); err != nil {
		slog.Error("failed to save checkout order",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		c.metrics.Dropped.WithLabelValues("save").Inc()
		return
	}

	c.metrics.Processed.WithLabelValues(env.EventName).Inc()
	slog.Info("external event processed",
		slog.String("event_id", env.EventID),
		slog.String("event_name", env.EventName),
		slog.String("session_id", sessionID),
		slog.String("status", status.String()))
}

// ProcessRaw is the single-message entry point, exported for replay tooling
// and tests.
func (c *Consumer) ProcessRaw(ctx context.Context, raw []byte) {
	c.processMessage(ctx, raw)
}
