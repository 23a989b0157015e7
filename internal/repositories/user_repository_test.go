package repositories_test

import (
	"context"
	"testing"

	"bookstore/internal/database"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAndAuthorRepositories(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)

	users := map[string]repositories.UserRepository{
		"gorm":   repositories.NewGORMUserRepository(db),
		"memory": repositories.NewMockUserRepository(),
	}
	for name, repo := range users {
		t.Run("users/"+name, func(t *testing.T) {
			user := &models.User{Email: "reader@example.com", Name: "Reader", Password: "hash", Role: models.RoleUser}
			require.NoError(t, repo.Create(ctx, user))
			assert.NotEmpty(t, user.ID)

			err := repo.Create(ctx, &models.User{Email: "reader@example.com", Name: "Again", Password: "hash", Role: models.RoleUser})
			assert.ErrorIs(t, err, repositories.ErrDuplicate)

			byEmail, err := repo.GetByEmail(ctx, "reader@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			_, err = repo.GetByID(ctx, "nobody")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}

	authors := map[string]repositories.AuthorRepository{
		"gorm":   repositories.NewGORMAuthorRepository(db),
		"memory": repositories.NewMockAuthorRepository(),
	}
	for name, repo := range authors {
		t.Run("authors/"+name, func(t *testing.T) {
			tolkien := &models.Author{Name: "J.R.R. Tolkien", Nationality: "British"}
			austen := &models.Author{Name: "Jane Austen"}
			require.NoError(t, repo.Create(ctx, tolkien))
			require.NoError(t, repo.Create(ctx, austen))

			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "J.R.R. Tolkien", list[0].Name)

			austen.Bio = "Novelist"
			require.NoError(t, repo.Update(ctx, austen))
			got, err := repo.GetByID(ctx, austen.ID)
			require.NoError(t, err)
			assert.Equal(t, "Novelist", got.Bio)

			require.NoError(t, repo.SoftDelete(ctx, tolkien.ID))
			_, err = repo.GetByID(ctx, tolkien.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Update(ctx, tolkien), repositories.ErrNotFound)
		})
	}
}
