package repositories

import (
	"context"

	"bookstore/internal/models"
)

// AuthorRepository defines the interface for author data access. Reads only
// see authors that are not soft-deleted.
type AuthorRepository interface {
	List(ctx context.Context) ([]models.Author, error)
	GetByID(ctx context.Context, id string) (*models.Author, error)
	Create(ctx context.Context, author *models.Author) error
	Update(ctx context.Context, author *models.Author) error
	SoftDelete(ctx context.Context, id string) error
}
