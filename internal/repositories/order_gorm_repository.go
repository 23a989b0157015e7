package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	})
}

// Create inserts the order row and its item rows in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Scopes(withItems).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser returns the orders placed by userID.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Scopes(withItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// ListAll returns every order.
func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Scopes(withItems).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// TransitionStatus is a compare-and-set on the status column.
func (r *GORMOrderRepository) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to transition order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s is no longer %s: %w", id, from, ErrStatusConflict)
	}
	return r.GetByID(ctx, id)
}
