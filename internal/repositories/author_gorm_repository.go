package repositories

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAuthorRepository is a GORM implementation of AuthorRepository.
type GORMAuthorRepository struct {
	db *gorm.DB
}

func NewGORMAuthorRepository(db *gorm.DB) *GORMAuthorRepository {
	return &GORMAuthorRepository{db: db}
}

func (r *GORMAuthorRepository) List(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	if err := r.db.WithContext(ctx).Scopes(visible).Order("name ASC").Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

func (r *GORMAuthorRepository) GetByID(ctx context.Context, id string) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).Scopes(visible).First(&author, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("author with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get author by ID %s: %w", id, err)
	}
	return &author, nil
}

func (r *GORMAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	if author.ID == "" {
		author.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(author).Error; err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

func (r *GORMAuthorRepository) Update(ctx context.Context, author *models.Author) error {
	res := r.db.WithContext(ctx).
		Scopes(visible).
		Model(author).
		Select("*").
		Omit("id", "created_at", "is_deleted").
		Updates(author)
	if res.Error != nil {
		return fmt.Errorf("failed to update author: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("author with ID %s: %w", author.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMAuthorRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Author{}).
		Scopes(visible).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to delete author: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("author with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
