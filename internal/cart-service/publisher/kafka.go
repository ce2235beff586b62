package publisher

import (
	"context"

	"github.com/dadopl/poc-nocart/internal/pkg/event"
	"github.com/dadopl/poc-nocart/internal/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes cart event envelopes to the cart-events topic,
// keyed by cart id so one cart's events stay on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(client *messaging.Client) *KafkaPublisher {
	return &KafkaPublisher{writer: client.NewWriter(messaging.TopicCartEvents)}
}

func (p *KafkaPublisher) Publish(ctx context.Context, env event.Envelope) error {
	data, err := env.ToJSON()
	if err != nil {
		return err
	}
	return messaging.PublishJSON(ctx, p.writer, env.AggregateID, data, env.EventName)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
