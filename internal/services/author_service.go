package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/internal/apperror"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/rs/zerolog"
)

type AuthorInput struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Bio         string     `json:"bio"`
	BirthDate   *time.Time `json:"birth_date"`
	Nationality string     `json:"nationality" validate:"max=100"`
	Photo       string     `json:"photo"`
}

type AuthorPatch struct {
	Name        *string    `json:"name" validate:"omitempty,max=100"`
	Bio         *string    `json:"bio"`
	BirthDate   *time.Time `json:"birth_date"`
	Nationality *string    `json:"nationality" validate:"omitempty,max=100"`
	Photo       *string    `json:"photo"`
}

// AuthorService manages authors of the catalog.
type AuthorService struct {
	authors repositories.AuthorRepository
	log     zerolog.Logger
}

func NewAuthorService(authors repositories.AuthorRepository, log zerolog.Logger) *AuthorService {
	return &AuthorService{
		authors: authors,
		log:     log.With().Str("component", "author_service").Logger(),
	}
}

func (s *AuthorService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "Could not retrieve authors")
	}
	return authors, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, id string) (*models.Author, error) {
	author, err := s.authors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("Author not found")
		}
		return nil, apperror.Internal(err, "Could not retrieve author")
	}
	return author, nil
}

func (s *AuthorService) CreateAuthor(ctx context.Context, identity *Identity, input AuthorInput) (*models.Author, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	author := &models.Author{
		Name:        input.Name,
		Bio:         input.Bio,
		BirthDate:   input.BirthDate,
		Nationality: input.Nationality,
		Photo:       input.Photo,
	}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, apperror.Internal(err, "Could not create author")
	}
	s.log.Info().Str("author_id", author.ID).Msg("author created")
	return author, nil
}

func (s *AuthorService) UpdateAuthor(ctx context.Context, identity *Identity, id string, patch AuthorPatch) (*models.Author, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		author.Name = strings.TrimSpace(*patch.Name)
		if author.Name == "" {
			return nil, apperror.Validation("name is required")
		}
	}
	if patch.Bio != nil {
		author.Bio = *patch.Bio
	}
	if patch.BirthDate != nil {
		author.BirthDate = patch.BirthDate
	}
	if patch.Nationality != nil {
		author.Nationality = *patch.Nationality
	}
	if patch.Photo != nil {
		author.Photo = *patch.Photo
	}

	if err := s.authors.Update(ctx, author); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("Author not found")
		}
		return nil, apperror.Internal(err, "Could not update author")
	}
	return author, nil
}

// DeleteAuthor hides an author. Their books stay listed.
func (s *AuthorService) DeleteAuthor(ctx context.Context, identity *Identity, id string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	if err := s.authors.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFound("Author not found")
		}
		return apperror.Internal(err, "Could not delete author")
	}
	s.log.Info().Str("author_id", id).Msg("author deleted")
	return nil
}
