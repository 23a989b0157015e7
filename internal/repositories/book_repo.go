package repositories

import (
	"context"

	"bookstore/internal/models"
)

// BookFilter narrows a catalog listing.
type BookFilter struct {
	Limit    int
	Offset   int
	Search   string // Case-insensitive match on title or description
	AuthorID string
	// ByTitle sorts alphabetically instead of newest first.
	ByTitle bool
}

// BookRepository is the inventory store. Every read except GetByISBN and
// Release only sees books that are not soft-deleted.
type BookRepository interface {
	List(ctx context.Context, filter BookFilter) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	SoftDelete(ctx context.Context, id string) error

	// TryReserve decrements stock by qty only if at least qty is available,
	// as a single atomic step, and returns the book as of the decrement.
	TryReserve(ctx context.Context, id string, qty int) (*models.Book, error)
	// Release increments stock by qty. Soft-deleted books are restocked too.
	Release(ctx context.Context, id string, qty int) error
}
