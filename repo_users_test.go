package flix_test

import (
	"context"
	"testing"

	flix "github.com/goliatone/go-flix"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepository_Register(t *testing.T) {
	ctx := context.Background()
	repo := setupRepoManager(t)

	t.Run("persists a new user", func(t *testing.T) {
		user, err := repo.Users().Register(ctx, &flix.User{
			Username:     "tester",
			Email:        "tester@example.com",
			PasswordHash: "hash",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.NotNil(t, user.CreatedAt)
	})

	t.Run("derives a stable id from the email", func(t *testing.T) {
		first, err := repo.Users().Register(ctx, &flix.User{
			Username: "stable",
			Email:    "stable@example.com",
		})
		require.NoError(t, err)

		// Same email produces the same derived UUID
		second := &flix.User{Username: "other", Email: "stable@example.com"}
		_, err = repo.Users().Register(ctx, second)
		require.Error(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("duplicate email fails", func(t *testing.T) {
		_, err := repo.Users().Register(ctx, &flix.User{
			Username: "tester2",
			Email:    "tester@example.com",
		})

		require.Error(t, err)
		assert.True(t, flix.IsDuplicateError(err))
	})

	t.Run("duplicate username fails", func(t *testing.T) {
		_, err := repo.Users().Register(ctx, &flix.User{
			Username: "tester",
			Email:    "unique@example.com",
		})

		require.Error(t, err)
		assert.True(t, flix.IsDuplicateError(err))
	})
}

func TestUsersRepository_GetByIdentifier(t *testing.T) {
	ctx := context.Background()
	repo := setupRepoManager(t)

	seeded := seedUser(t, repo, "tester@example.com", "tester", "password1234")

	t.Run("by id", func(t *testing.T) {
		user, err := repo.Users().GetByIdentifier(ctx, seeded.ID.String())
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
	})

	t.Run("by email", func(t *testing.T) {
		user, err := repo.Users().GetByIdentifier(ctx, "tester@example.com")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
	})

	t.Run("by username", func(t *testing.T) {
		user, err := repo.Users().GetByIdentifier(ctx, "tester")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		user, err := repo.Users().GetByIdentifier(ctx, "nobody@example.com")
		assert.Nil(t, user)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		user, err := repo.Users().GetByIdentifier(ctx, "  tester@example.com  ")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
	})
}

func TestUsersRepository_ResetPassword(t *testing.T) {
	ctx := context.Background()
	repo := setupRepoManager(t)

	seeded := seedUser(t, repo, "tester@example.com", "tester", "password1234")

	t.Run("replaces the stored hash", func(t *testing.T) {
		newHash, err := flix.HashPassword("new password 99")
		require.NoError(t, err)

		require.NoError(t, repo.Users().ResetPassword(ctx, seeded.ID, newHash))

		user, err := repo.Users().GetByIdentifier(ctx, seeded.ID.String())
		require.NoError(t, err)

		assert.NoError(t, flix.ComparePasswordAndHash("new password 99", user.PasswordHash))
		assert.ErrorIs(t, flix.ComparePasswordAndHash("password1234", user.PasswordHash), flix.ErrMismatchedHashAndPassword)
		assert.NotNil(t, user.ResetedAt)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.Users().ResetPassword(ctx, uuid.New(), "hash")
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestUsersRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := setupRepoManager(t)

	seeded := seedUser(t, repo, "tester@example.com", "tester", "password1234")

	t.Run("returns the existing record", func(t *testing.T) {
		user, err := repo.Users().GetOrCreate(ctx, &flix.User{Email: "tester@example.com"})
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
	})

	t.Run("creates a missing record", func(t *testing.T) {
		user, err := repo.Users().GetOrCreate(ctx, &flix.User{
			Username: "newcomer",
			Email:    "newcomer@example.com",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
	})
}

func TestUsersRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := setupRepoManager(t)

	seeded := seedUser(t, repo, "tester@example.com", "tester", "password1234")

	t.Run("updates the existing record", func(t *testing.T) {
		user, err := repo.Users().Upsert(ctx, &flix.User{
			Email:     "tester@example.com",
			Username:  "tester",
			FirstName: "Renamed",
		})
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)

		got, err := repo.Users().GetByIdentifier(ctx, seeded.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.FirstName)
	})

	t.Run("inserts a missing record", func(t *testing.T) {
		user, err := repo.Users().Upsert(ctx, &flix.User{
			Email:    "upserted@example.com",
			Username: "upserted",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
	})
}
