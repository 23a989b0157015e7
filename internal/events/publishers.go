package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Broker is a message transport keyed by routing key. pkg/rabbitmq,
// pkg/redispubsub and pkg/kafka clients satisfy it.
type Broker interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// BrokerPublisher JSON-encodes events and routes them by type.
type BrokerPublisher struct {
	broker Broker
}

func NewBrokerPublisher(broker Broker) *BrokerPublisher {
	return &BrokerPublisher{broker: broker}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	if err := p.broker.Publish(ctx, string(event.Type), body); err != nil {
		return fmt.Errorf("failed to publish event %s (%s): %w", event.ID, event.Type, err)
	}
	return nil
}

// LogPublisher writes each event to the log instead of a broker.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		RawJSON("payload", event.Payload).
		Msg("domain event")
	return nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
