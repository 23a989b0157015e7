package services

import (
	"context"

	"bookstore/internal/events"

	"github.com/rs/zerolog"
)

const producer = "bookstore"

// eventSink publishes domain events on a best-effort basis: failures are
// logged and never reach the caller.
type eventSink struct {
	publisher events.Publisher
	log       zerolog.Logger
}

func newEventSink(publisher events.Publisher, log zerolog.Logger) eventSink {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return eventSink{publisher: publisher, log: log}
}

func (s eventSink) emit(ctx context.Context, typ events.Type, payload any) {
	evt, err := events.New(typ, producer, payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to encode event")
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.log.Warn().Err(err).Str("event_type", string(typ)).Str("event_id", evt.ID).Msg("failed to publish event")
	}
}
