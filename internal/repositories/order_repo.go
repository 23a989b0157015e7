package repositories

import (
	"context"

	"bookstore/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted; after Create only the status changes.
type OrderRepository interface {
	// Create persists the order together with its items atomically.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// ListByUser and ListAll return newest orders first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus sets status unconditionally (last writer wins).
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	// TransitionStatus sets status to `to` only while it still equals `from`.
	TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error)
}
