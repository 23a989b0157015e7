package main

import (
	"context"
	"fmt"

	"bookstore/internal/apperror"
	"bookstore/internal/config"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var seedCatalog = []struct {
	author services.AuthorInput
	books  []services.BookInput
}{
	{
		author: services.AuthorInput{Name: "Alan A. A. Donovan", Nationality: "American"},
		books: []services.BookInput{
			{Title: "The Go Programming Language", ISBN: "9780134190440", Price: decimal.RequireFromString("39.99"), Stock: 10},
		},
	},
	{
		author: services.AuthorInput{Name: "Katherine Cox-Buday", Nationality: "American"},
		books: []services.BookInput{
			{Title: "Concurrency in Go", ISBN: "9781491941195", Price: decimal.RequireFromString("34.99"), Stock: 5},
		},
	},
	{
		author: services.AuthorInput{Name: "Jane Austen", Nationality: "British"},
		books: []services.BookInput{
			{Title: "Pride and Prejudice", ISBN: "9780141439518", Price: decimal.RequireFromString("9.99"), Stock: 20},
			{Title: "Emma", ISBN: "9780141439587", Price: decimal.RequireFromString("8.99"), Stock: 12},
		},
	},
}

// seed creates the configured administrator and, on an empty catalog, a few
// authors and books.
func seed(ctx context.Context, app *application, cfg config.Config, log zerolog.Logger) error {
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		_, err := app.auth.RegisterWithRole(ctx, services.RegisterInput{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Name:     "Administrator",
		}, models.RoleAdmin)
		switch {
		case err == nil:
			log.Info().Str("email", cfg.AdminEmail).Msg("seeded administrator")
		case apperror.Is(err, apperror.KindValidation):
			log.Debug().Str("email", cfg.AdminEmail).Msg("administrator already present")
		default:
			return fmt.Errorf("failed to seed administrator: %w", err)
		}
	}

	existing, err := app.authors.ListAuthors(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeder := &services.Identity{UserID: "seed", Role: models.RoleAdmin}
	for _, entry := range seedCatalog {
		author, err := app.authors.CreateAuthor(ctx, seeder, entry.author)
		if err != nil {
			return fmt.Errorf("failed to seed author %s: %w", entry.author.Name, err)
		}
		for _, in := range entry.books {
			in.AuthorID = author.ID
			book, err := app.books.CreateBook(ctx, seeder, in)
			if err != nil {
				return fmt.Errorf("failed to seed book %s: %w", in.Title, err)
			}
			log.Info().Str("book_id", book.ID).Str("title", book.Title).Msg("seeded book")
		}
	}
	return nil
}
