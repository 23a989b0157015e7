package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/internal/apperror"
	"bookstore/internal/events"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// BookInput is the body of a book creation.
type BookInput struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description"`
	ISBN          string          `json:"isbn" validate:"required,min=10,max=13"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" validate:"gte=0"`
	CoverImage    string          `json:"cover_image"`
	PublishedDate *time.Time      `json:"published_date"`
	AuthorID      string          `json:"author_id" validate:"required"`
}

// BookPatch is a partial update; nil fields are left unchanged.
type BookPatch struct {
	Title         *string          `json:"title" validate:"omitempty,max=200"`
	Description   *string          `json:"description"`
	ISBN          *string          `json:"isbn" validate:"omitempty,min=10,max=13"`
	Price         *decimal.Decimal `json:"price"`
	Stock         *int             `json:"stock" validate:"omitempty,gte=0"`
	CoverImage    *string          `json:"cover_image"`
	PublishedDate *time.Time       `json:"published_date"`
	AuthorID      *string          `json:"author_id"`
}

// BookService handles the catalog side of the inventory.
type BookService struct {
	books   repositories.BookRepository
	authors repositories.AuthorRepository
	events  eventSink
	log     zerolog.Logger
}

// NewBookService creates a new BookService.
func NewBookService(books repositories.BookRepository, authors repositories.AuthorRepository, publisher events.Publisher, log zerolog.Logger) *BookService {
	log = log.With().Str("component", "book_service").Logger()
	return &BookService{
		books:   books,
		authors: authors,
		events:  newEventSink(publisher, log),
		log:     log,
	}
}

func normalizePage(filter repositories.BookFilter) repositories.BookFilter {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return filter
}

// ListBooks retrieves visible books, 50 per page unless asked otherwise.
func (s *BookService) ListBooks(ctx context.Context, filter repositories.BookFilter) ([]models.Book, error) {
	books, err := s.books.List(ctx, normalizePage(filter))
	if err != nil {
		return nil, apperror.Internal(err, "Could not retrieve books")
	}
	return books, nil
}

// GetBook retrieves a single visible book.
func (s *BookService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("Book not found")
		}
		return nil, apperror.Internal(err, "Could not retrieve book")
	}
	return book, nil
}

// BooksByAuthor lists the visible books of a visible author, by title.
func (s *BookService) BooksByAuthor(ctx context.Context, authorID string, filter repositories.BookFilter) ([]models.Book, error) {
	if err := s.requireAuthor(ctx, authorID); err != nil {
		return nil, err
	}
	filter.AuthorID = authorID
	filter.ByTitle = true
	return s.ListBooks(ctx, filter)
}

// CreateBook adds a book to the catalog.
func (s *BookService) CreateBook(ctx context.Context, identity *Identity, input BookInput) (*models.Book, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.ISBN = strings.TrimSpace(input.ISBN)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, apperror.Validation("price must not be negative")
	}
	if err := s.requireAuthor(ctx, input.AuthorID); err != nil {
		return nil, err
	}
	if err := s.requireUniqueISBN(ctx, input.ISBN, ""); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:         input.Title,
		Description:   input.Description,
		ISBN:          input.ISBN,
		Price:         input.Price,
		Stock:         input.Stock,
		CoverImage:    input.CoverImage,
		PublishedDate: input.PublishedDate,
		AuthorID:      input.AuthorID,
	}
	if err := s.books.Create(ctx, book); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Validation("Book with ISBN %s already exists", book.ISBN)
		}
		return nil, apperror.Internal(err, "Could not create book")
	}

	s.log.Info().Str("book_id", book.ID).Str("isbn", book.ISBN).Msg("book created")
	s.bookUpdated(ctx, book)
	return book, nil
}

// UpdateBook applies a partial update to a visible book.
func (s *BookService) UpdateBook(ctx context.Context, identity *Identity, id string, patch BookPatch) (*models.Book, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		book.Title = strings.TrimSpace(*patch.Title)
		if book.Title == "" {
			return nil, apperror.Validation("title is required")
		}
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.ISBN != nil && strings.TrimSpace(*patch.ISBN) != book.ISBN {
		book.ISBN = strings.TrimSpace(*patch.ISBN)
		if err := s.requireUniqueISBN(ctx, book.ISBN, book.ID); err != nil {
			return nil, err
		}
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperror.Validation("price must not be negative")
		}
		book.Price = *patch.Price
	}
	if patch.Stock != nil {
		book.Stock = *patch.Stock
	}
	if patch.CoverImage != nil {
		book.CoverImage = *patch.CoverImage
	}
	if patch.PublishedDate != nil {
		book.PublishedDate = patch.PublishedDate
	}
	if patch.AuthorID != nil && *patch.AuthorID != book.AuthorID {
		if err := s.requireAuthor(ctx, *patch.AuthorID); err != nil {
			return nil, err
		}
		book.AuthorID = *patch.AuthorID
	}

	if err := s.books.Update(ctx, book); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperror.NotFound("Book not found")
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperror.Validation("Book with ISBN %s already exists", book.ISBN)
		default:
			return nil, apperror.Internal(err, "Could not update book")
		}
	}

	s.bookUpdated(ctx, book)
	return book, nil
}

// DeleteBook hides a book from the catalog. Existing orders keep referring
// to it.
func (s *BookService) DeleteBook(ctx context.Context, identity *Identity, id string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err := s.books.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("Book not found")
		}
		return apperror.Internal(err, "Could not delete book")
	}

	book.IsDeleted = true
	s.log.Info().Str("book_id", id).Msg("book deleted")
	s.bookUpdated(ctx, book)
	return nil
}

func (s *BookService) requireAuthor(ctx context.Context, authorID string) error {
	if _, err := s.authors.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("Author not found")
		}
		return apperror.Internal(err, "Could not retrieve author")
	}
	return nil
}

// requireUniqueISBN also counts soft-deleted books, whose rows still hold the
// unique key.
func (s *BookService) requireUniqueISBN(ctx context.Context, isbn, exceptID string) error {
	existing, err := s.books.GetByISBN(ctx, isbn)
	switch {
	case err == nil && existing.ID != exceptID:
		return apperror.Validation("Book with ISBN %s already exists", isbn)
	case err == nil, errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return apperror.Internal(err, "Could not check ISBN")
	}
}

func (s *BookService) bookUpdated(ctx context.Context, book *models.Book) {
	s.events.emit(ctx, events.TypeBookUpdated, events.BookUpdatedPayload{
		BookID:    book.ID,
		Title:     book.Title,
		Price:     book.Price,
		Stock:     book.Stock,
		IsDeleted: book.IsDeleted,
	})
}
