package main

import (
	"context"
	"fmt"

	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/repositories"
)

// stores bundles the repositories of one backend.
type stores struct {
	books   repositories.BookRepository
	authors repositories.AuthorRepository
	orders  repositories.OrderRepository
	users   repositories.UserRepository
	ping    func(context.Context) error
	close   func() error
}

// openStores connects the configured backend. The "memory" driver keeps
// everything in process and loses it on exit.
func openStores(cfg config.Config) (*stores, error) {
	if cfg.DBDriver == "memory" {
		return memoryStores(), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return &stores{
		books:   repositories.NewGORMBookRepository(db),
		authors: repositories.NewGORMAuthorRepository(db),
		orders:  repositories.NewGORMOrderRepository(db),
		users:   repositories.NewGORMUserRepository(db),
		ping:    sqlDB.PingContext,
		close:   func() error { return database.Close(db) },
	}, nil
}

func memoryStores() *stores {
	return &stores{
		books:   repositories.NewMockBookRepository(),
		authors: repositories.NewMockAuthorRepository(),
		orders:  repositories.NewMockOrderRepository(),
		users:   repositories.NewMockUserRepository(),
		ping:    noPing,
		close:   func() error { return nil },
	}
}
