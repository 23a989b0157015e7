package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// clone detaches the item slice so callers cannot mutate stored orders.
func clone(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (r *MockOrderRepository) list(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			orderList = append(orderList, clone(order))
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		if !orderList[i].CreatedAt.Equal(orderList[j].CreatedAt) {
			return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
		}
		return orderList[i].ID < orderList[j].ID
	})
	return orderList
}

// ListAll returns all orders.
func (r *MockOrderRepository) ListAll(_ context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

// ListByUser returns the orders of one user.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order = clone(order)
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = uint(i + 1)
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = clone(*order)
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	order = clone(order)
	return &order, nil
}

// TransitionStatus updates the status only while it still equals from.
func (r *MockOrderRepository) TransitionStatus(_ context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.Status != from {
		return nil, fmt.Errorf("order %s is no longer %s: %w", id, from, ErrStatusConflict)
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	order = clone(order)
	return &order, nil
}
