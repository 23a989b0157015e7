package main

import (
	"context"
	"encoding/json"
	"fmt"

	"bookstore/internal/config"
	"bookstore/internal/events"
	"bookstore/pkg/kafka"
	"bookstore/pkg/rabbitmq"
	"bookstore/pkg/redispubsub"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const notificationQueue = "bookstore.notifications"

func nopClose() error { return nil }

// openPublisher builds the event publisher selected by EVENTS_BACKEND and
// returns the function that releases its connection.
func openPublisher(ctx context.Context, cfg config.Config, log zerolog.Logger) (events.Publisher, func() error, error) {
	switch cfg.EventsBackend {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Consume(notificationQueue, "order.*", notificationHandler(log)); err != nil {
			// Publishing still works without the consumer.
			log.Error().Err(err).Msg("failed to start notification consumer")
		}
		return events.NewBrokerPublisher(client), client.Close, nil

	case "redis":
		client, err := redispubsub.New(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return events.NewBrokerPublisher(client), client.Close, nil

	case "kafka":
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		return events.NewBrokerPublisher(producer), producer.Close, nil

	case "log", "":
		return events.NewLogPublisher(log), nopClose, nil

	case "none":
		return events.NopPublisher{}, nopClose, nil

	default:
		return nil, nil, fmt.Errorf("unsupported events backend %q", cfg.EventsBackend)
	}
}

// notificationHandler stands in for customer notifications (mail, push) by
// logging every order event it receives.
func notificationHandler(log zerolog.Logger) rabbitmq.Handler {
	log = log.With().Str("component", "notifications").Logger()
	return func(msg amqp.Delivery) error {
		var evt events.Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}

		var order struct {
			OrderID string `json:"order_id"`
			UserID  string `json:"user_id"`
		}
		if err := json.Unmarshal(evt.Payload, &order); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", evt.Type, err)
		}

		log.Info().
			Str("event_id", evt.ID).
			Str("event_type", string(evt.Type)).
			Str("order_id", order.OrderID).
			Str("user_id", order.UserID).
			Msg("notifying customer")
		return nil
	}
}
