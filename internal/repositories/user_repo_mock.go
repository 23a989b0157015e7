package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

func (r *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}
