package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topic names shared by all producers and the checkout consumer.
const (
	TopicCartEvents      = "cart-events"
	TopicShippingEvents  = "shipping-events"
	TopicPromotionEvents = "promotion-events"
	TopicServicesEvents  = "services-events"
	TopicPaymentEvents   = "payment-events"
	TopicCheckoutEvents  = "checkout-events"
)

// ConsumerTopics lists every topic the checkout projection folds events from.
func ConsumerTopics() []string {
	return []string{
		TopicCartEvents,
		TopicShippingEvents,
		TopicPromotionEvents,
		TopicServicesEvents,
		TopicPaymentEvents,
	}
}

type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (c *Client) NewReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6, // 10MB
	})
}

// PublishJSON writes one message keyed by the aggregate id so that events for
// the same aggregate land on the same partition.
func PublishJSON(ctx context.Context, writer *kafka.Writer, key string, value []byte, eventType string) error {
	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}
