package services_test

import (
	"context"
	"sync"

	"bookstore/internal/events"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Types returns the event types published so far, in order.
func (m *MockPublisher) Types() []events.Type {
	var types []events.Type
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			types = append(types, call.Arguments.Get(1).(events.Event).Type)
		}
	}
	return types
}

func newPublisher() *MockPublisher {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return pub
}

// failingOrderRepository fails every Create.
type failingOrderRepository struct {
	repositories.OrderRepository
	err error
}

func (r failingOrderRepository) Create(context.Context, *models.Order) error {
	return r.err
}

// releaseFailingBookRepository refuses to restock the listed books.
type releaseFailingBookRepository struct {
	*repositories.MockBookRepository
	mu     sync.Mutex
	failOn map[string]bool
}

func (r *releaseFailingBookRepository) Release(ctx context.Context, id string, qty int) error {
	r.mu.Lock()
	fail := r.failOn[id]
	r.mu.Unlock()
	if fail {
		return repositories.ErrNotFound
	}
	return r.MockBookRepository.Release(ctx, id, qty)
}
