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

// MockAuthorRepository is an in-memory implementation of AuthorRepository.
type MockAuthorRepository struct {
	authors map[string]models.Author
	mu      sync.RWMutex
}

func NewMockAuthorRepository() *MockAuthorRepository {
	return &MockAuthorRepository{
		authors: make(map[string]models.Author),
	}
}

func (r *MockAuthorRepository) List(_ context.Context) ([]models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	authorList := make([]models.Author, 0, len(r.authors))
	for _, a := range r.authors {
		if !a.IsDeleted {
			authorList = append(authorList, a)
		}
	}
	sort.Slice(authorList, func(i, j int) bool { return authorList[i].Name < authorList[j].Name })
	return authorList, nil
}

func (r *MockAuthorRepository) GetByID(_ context.Context, id string) (*models.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	author, ok := r.authors[id]
	if !ok || author.IsDeleted {
		return nil, fmt.Errorf("author with ID %s: %w", id, ErrNotFound)
	}
	return &author, nil
}

func (r *MockAuthorRepository) Create(_ context.Context, author *models.Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if author.ID == "" {
		author.ID = uuid.New().String()
	}
	now := time.Now()
	author.CreatedAt = now
	author.UpdatedAt = now
	r.authors[author.ID] = *author
	return nil
}

func (r *MockAuthorRepository) Update(_ context.Context, author *models.Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.authors[author.ID]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("author with ID %s: %w", author.ID, ErrNotFound)
	}
	author.CreatedAt = existing.CreatedAt
	author.UpdatedAt = time.Now()
	r.authors[author.ID] = *author
	return nil
}

func (r *MockAuthorRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	author, ok := r.authors[id]
	if !ok || author.IsDeleted {
		return fmt.Errorf("author with ID %s: %w", id, ErrNotFound)
	}
	author.IsDeleted = true
	author.UpdatedAt = time.Now()
	r.authors[id] = author
	return nil
}
