package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
)

// MockBookRepository is an in-memory implementation of BookRepository.
// Reservation and release hold the write lock for the whole
// check-and-update, which makes them linearizable per book.
type MockBookRepository struct {
	books map[string]models.Book
	mu    sync.RWMutex
}

// NewMockBookRepository creates a new instance of MockBookRepository.
func NewMockBookRepository() *MockBookRepository {
	return &MockBookRepository{
		books: make(map[string]models.Book),
	}
}

func (r *MockBookRepository) visible(id string) (models.Book, bool) {
	book, ok := r.books[id]
	if !ok || book.IsDeleted {
		return models.Book{}, false
	}
	return book, true
}

// List returns visible books matching filter.
func (r *MockBookRepository) List(_ context.Context, filter BookFilter) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	bookList := make([]models.Book, 0, len(r.books))
	for id := range r.books {
		b, ok := r.visible(id)
		if !ok {
			continue
		}
		if filter.AuthorID != "" && b.AuthorID != filter.AuthorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Description), search) {
			continue
		}
		bookList = append(bookList, b)
	}

	sort.Slice(bookList, func(i, j int) bool {
		if filter.ByTitle {
			return bookList[i].Title < bookList[j].Title
		}
		if !bookList[i].CreatedAt.Equal(bookList[j].CreatedAt) {
			return bookList[i].CreatedAt.After(bookList[j].CreatedAt)
		}
		return bookList[i].ID < bookList[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(bookList) {
			return []models.Book{}, nil
		}
		bookList = bookList[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(bookList) {
		bookList = bookList[:filter.Limit]
	}
	return bookList, nil
}

// GetByID returns a visible book by its ID.
func (r *MockBookRepository) GetByID(_ context.Context, id string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.visible(id)
	if !ok {
		return nil, fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	return &book, nil
}

// GetByISBN returns a book by ISBN, deleted or not.
func (r *MockBookRepository) GetByISBN(_ context.Context, isbn string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.books {
		if b.ISBN == isbn {
			book := b
			return &book, nil
		}
	}
	return nil, fmt.Errorf("book with ISBN %s: %w", isbn, ErrNotFound)
}

// Create adds a new book.
func (r *MockBookRepository) Create(_ context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.books {
		if b.ISBN == book.ISBN {
			return fmt.Errorf("book with ISBN %s: %w", book.ISBN, ErrDuplicate)
		}
	}
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	r.books[book.ID] = *book
	return nil
}

// Update modifies an existing visible book.
func (r *MockBookRepository) Update(_ context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.visible(book.ID)
	if !ok {
		return fmt.Errorf("book with ID %s: %w", book.ID, ErrNotFound)
	}
	for id, b := range r.books {
		if id != book.ID && b.ISBN == book.ISBN {
			return fmt.Errorf("book with ISBN %s: %w", book.ISBN, ErrDuplicate)
		}
	}
	book.CreatedAt = existing.CreatedAt
	book.IsDeleted = false
	book.UpdatedAt = time.Now()
	r.books[book.ID] = *book
	return nil
}

// SoftDelete flags a book as deleted.
func (r *MockBookRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.visible(id)
	if !ok {
		return fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	book.IsDeleted = true
	book.UpdatedAt = time.Now()
	r.books[id] = book
	return nil
}

// TryReserve decrements stock if enough is available.
func (r *MockBookRepository) TryReserve(_ context.Context, id string, qty int) (*models.Book, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("invalid reservation quantity %d for book %s", qty, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.visible(id)
	if !ok {
		return nil, fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	if book.Stock < qty {
		return nil, fmt.Errorf("book with ID %s (requested: %d, available: %d): %w", id, qty, book.Stock, ErrInsufficientStock)
	}
	book.Stock -= qty
	r.books[id] = book
	return &book, nil
}

// Release increments stock.
func (r *MockBookRepository) Release(_ context.Context, id string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid release quantity %d for book %s", qty, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[id]
	if !ok {
		return fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	book.Stock += qty
	r.books[id] = book
	return nil
}
