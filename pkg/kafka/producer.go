package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer writes messages to a single topic, keyed by routing key so every
// event type keeps its order within a partition.
type Producer struct {
	writer MessageWriter
}

// NewProducer builds a producer backed by a kafka-go writer.
func NewProducer(brokers []string, topic string) *Producer {
	return NewProducerWithWriter(&kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	})
}

func NewProducerWithWriter(w MessageWriter) *Producer {
	return &Producer{writer: w}
}

// Publish writes one message and waits for the acknowledgement.
func (p *Producer) Publish(ctx context.Context, routingKey string, body []byte) error {
	msg := kafkago.Message{
		Key:   []byte(routingKey),
		Value: body,
		Headers: []kafkago.Header{
			{Key: "x-event-type", Value: []byte(routingKey)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write kafka message %s: %w", routingKey, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
