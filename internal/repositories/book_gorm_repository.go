package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// visible is the soft-delete predicate shared by every catalog read.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// GORMBookRepository is a GORM implementation of BookRepository.
type GORMBookRepository struct {
	db *gorm.DB
}

// NewGORMBookRepository creates a new instance of GORMBookRepository.
func NewGORMBookRepository(db *gorm.DB) *GORMBookRepository {
	return &GORMBookRepository{
		db: db,
	}
}

// List retrieves visible books matching filter.
func (r *GORMBookRepository) List(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	q := r.db.WithContext(ctx).Scopes(visible)
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if filter.ByTitle {
		q = q.Order("title ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var books []models.Book
	if err := q.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetByID retrieves a single visible book by its ID.
func (r *GORMBookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Scopes(visible).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, err)
	}
	return &book, nil
}

// GetByISBN looks at deleted books as well, since the ISBN stays reserved.
func (r *GORMBookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "isbn = ?", isbn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book with ISBN %s: %w", isbn, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by ISBN %s: %w", isbn, err)
	}
	return &book, nil
}

// Create creates a new book in the database.
func (r *GORMBookRepository) Create(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("book with ISBN %s: %w", book.ISBN, ErrDuplicate)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of a visible book.
func (r *GORMBookRepository) Update(ctx context.Context, book *models.Book) error {
	res := r.db.WithContext(ctx).
		Scopes(visible).
		Model(book).
		Select("*").
		Omit("id", "created_at", "is_deleted").
		Updates(book)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("book with ISBN %s: %w", book.ISBN, ErrDuplicate)
		}
		return fmt.Errorf("failed to update book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %s: %w", book.ID, ErrNotFound)
	}
	return nil
}

// SoftDelete flags a book as deleted.
func (r *GORMBookRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Scopes(visible).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// TryReserve runs the decrement as one conditional UPDATE so concurrent
// reservations against the same row are serialized by the database.
// UpdateColumn leaves updated_at untouched.
func (r *GORMBookRepository) TryReserve(ctx context.Context, id string, qty int) (*models.Book, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("invalid reservation quantity %d for book %s", qty, id)
	}

	var book models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Book{}).
			Scopes(visible).
			Where("id = ? AND stock >= ?", id, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return fmt.Errorf("failed to reserve stock for book %s: %w", id, res.Error)
		}

		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Book{}).Scopes(visible).Where("id = ?", id).Count(&exists).Error; err != nil {
				return fmt.Errorf("failed to check book %s: %w", id, err)
			}
			if exists == 0 {
				return fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("book with ID %s (requested: %d): %w", id, qty, ErrInsufficientStock)
		}

		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to read reserved book %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Release restores stock, regardless of the soft-delete flag.
func (r *GORMBookRepository) Release(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("invalid release quantity %d for book %s", qty, id)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to release stock for book %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("book with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
