package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
	mu       sync.Mutex // Serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string // Durable topic exchange every event is published to
}

// NewClient connects to RabbitMQ, opens a channel and declares the exchange.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	log = log.With().Str("component", "rabbitmq").Logger()
	log.Info().Str("exchange", cfg.Exchange).Msg("RabbitMQ client connected")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		log:      log,
	}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to the exchange.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug().Str("routing_key", routingKey).Int("bytes", len(body)).Msg("message published")
	return nil
}

// Handler processes one delivery. Returning an error requeues the message.
type Handler func(msg amqp.Delivery) error

// Consume binds queue to the exchange with bindingKey and processes messages
// in a goroutine until the channel closes.
func (c *Client) Consume(queueName, bindingKey string, handler Handler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := c.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	if err := c.channel.QueueBind(queue.Name, bindingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %w", queue.Name, bindingKey, err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info().Str("queue", queue.Name).Str("binding", bindingKey).Msg("waiting for events")

	go func() {
		for msg := range msgs {
			Dispatch(c.log, msg, handler)
		}
	}()

	return nil
}

// Dispatch runs handler and acknowledges the delivery on success. Failed
// deliveries are requeued once; redelivered failures are rejected so a poison
// message cannot loop forever.
func Dispatch(log zerolog.Logger, msg amqp.Delivery, handler Handler) {
	if err := handler(msg); err != nil {
		requeue := !msg.Redelivered
		log.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Bool("requeue", requeue).Msg("error processing message")
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			log.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("error nacking message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("error acking message")
	}
}
