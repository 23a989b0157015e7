package repositories_test

import (
	"context"
	"testing"
	"time"

	"bookstore/internal/database"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRepos(t *testing.T) map[string]repositories.OrderRepository {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	return map[string]repositories.OrderRepository{
		"gorm":   repositories.NewGORMOrderRepository(db),
		"memory": repositories.NewMockOrderRepository(),
	}
}

func newOrder(userID string) *models.Order {
	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{BookID: "book-b", Quantity: 2, Price: decimal.RequireFromString("19.99")},
			{BookID: "book-a", Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
		ShippingAddress: models.ShippingAddress{
			Street: "123 Main St", City: "New York", ZipCode: "10001", Country: "USA",
		},
	}
	order.TotalAmount = order.ComputeTotal()
	return order
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	for name, repo := range orderRepos(t) {
		t.Run(name, func(t *testing.T) {
			order := newOrder("user-1")
			require.NoError(t, repo.Create(ctx, order))
			require.NotEmpty(t, order.ID)

			got, err := repo.GetByID(ctx, order.ID)
			require.NoError(t, err)
			require.Len(t, got.Items, 2)
			assert.Equal(t, "book-b", got.Items[0].BookID)
			assert.Equal(t, "book-a", got.Items[1].BookID)
			assert.True(t, decimal.RequireFromString("44.98").Equal(got.TotalAmount))
			assert.True(t, got.TotalAmount.Equal(got.ComputeTotal()))
			assert.Equal(t, models.OrderStatusPending, got.Status)
			assert.Equal(t, "10001", got.ShippingAddress.ZipCode)
			assert.False(t, got.CreatedAt.IsZero())

			_, err = repo.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestOrderRepository_Listing(t *testing.T) {
	ctx := context.Background()
	for name, repo := range orderRepos(t) {
		t.Run(name, func(t *testing.T) {
			first := newOrder("user-1")
			require.NoError(t, repo.Create(ctx, first))
			time.Sleep(5 * time.Millisecond)
			other := newOrder("user-2")
			require.NoError(t, repo.Create(ctx, other))
			time.Sleep(5 * time.Millisecond)
			second := newOrder("user-1")
			require.NoError(t, repo.Create(ctx, second))

			mine, err := repo.ListByUser(ctx, "user-1")
			require.NoError(t, err)
			require.Len(t, mine, 2)
			assert.Equal(t, second.ID, mine[0].ID)
			assert.Equal(t, first.ID, mine[1].ID)
			assert.Len(t, mine[0].Items, 2)

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
			assert.Equal(t, second.ID, all[0].ID)
		})
	}
}

func TestOrderRepository_StatusChanges(t *testing.T) {
	ctx := context.Background()
	for name, repo := range orderRepos(t) {
		t.Run(name, func(t *testing.T) {
			order := newOrder("user-1")
			require.NoError(t, repo.Create(ctx, order))

			updated, err := repo.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusShipped, updated.Status)

			_, err = repo.TransitionStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled)
			assert.ErrorIs(t, err, repositories.ErrStatusConflict)

			cancelled, err := repo.TransitionStatus(ctx, order.ID, models.OrderStatusShipped, models.OrderStatusCancelled)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
			assert.Len(t, cancelled.Items, 2)

			_, err = repo.UpdateStatus(ctx, "missing", models.OrderStatusShipped)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = repo.TransitionStatus(ctx, "missing", models.OrderStatusPending, models.OrderStatusCancelled)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}
