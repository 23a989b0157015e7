package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names a domain event. It doubles as the broker routing key.
type Type string

const (
	TypeOrderPlaced        Type = "order.placed"
	TypeOrderStatusChanged Type = "order.status_changed"
	TypeBookStockChanged   Type = "book.stock_changed"
	TypeBookUpdated        Type = "book.updated"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID         string          `json:"event_id"`
	Type       Type            `json:"event_type"`
	Version    int             `json:"event_version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload in an envelope.
func New(typ Type, producer string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Payload:    body,
	}, nil
}

// ---- Payloads ----

type OrderLine struct {
	BookID   string          `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// BookStockChangedPayload carries the stock after the change when the store
// reported it, and the signed delta always.
type BookStockChangedPayload struct {
	BookID  string `json:"book_id"`
	Delta   int    `json:"delta"`
	Stock   *int   `json:"stock,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

type BookUpdatedPayload struct {
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	IsDeleted bool            `json:"is_deleted"`
}

// Publisher delivers events to whoever fans them out. Implementations must
// be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
