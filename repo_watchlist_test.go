package flix_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	flix "github.com/goliatone/go-flix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlistRepository(t *testing.T) {
	ctx := context.Background()
	repo := setupRepoManager(t)

	user := seedUser(t, repo, "tester@example.com", "tester", "password1234")

	t.Run("add a movie", func(t *testing.T) {
		err := repo.Watchlist().Add(ctx, &flix.WatchlistItem{
			UserID:  user.ID,
			MovieID: "tt0111161",
			Title:   "The Shawshank Redemption",
			Genre:   "Drama",
		})
		require.NoError(t, err)

		items, err := repo.Watchlist().ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "tt0111161", items[0].MovieID)
		assert.Equal(t, "Drama", items[0].Genre)
		assert.Nil(t, items[0].WatchedAt)
	})

	t.Run("re-adding keeps the original entry", func(t *testing.T) {
		err := repo.Watchlist().Add(ctx, &flix.WatchlistItem{
			UserID:  user.ID,
			MovieID: "tt0111161",
			Title:   "The Shawshank Redemption",
		})
		require.NoError(t, err)

		items, err := repo.Watchlist().ListByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("mark watched stamps the entry", func(t *testing.T) {
		require.NoError(t, repo.Watchlist().MarkWatched(ctx, user.ID, "tt0111161"))

		items, err := repo.Watchlist().ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.NotNil(t, items[0].WatchedAt)
	})

	t.Run("mark watched on a missing entry is a not found error", func(t *testing.T) {
		err := repo.Watchlist().MarkWatched(ctx, user.ID, "tt9999999")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("watchlist is scoped per user", func(t *testing.T) {
		other := seedUser(t, repo, "other@example.com", "other", "password1234")

		items, err := repo.Watchlist().ListByUser(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("contains reports membership per user", func(t *testing.T) {
		found, err := repo.Watchlist().Contains(ctx, user.ID, "tt0111161")
		require.NoError(t, err)
		assert.True(t, found)

		found, err = repo.Watchlist().Contains(ctx, user.ID, "tt9999999")
		require.NoError(t, err)
		assert.False(t, found)

		other := seedUser(t, repo, "third@example.com", "third", "password1234")
		found, err = repo.Watchlist().Contains(ctx, other.ID, "tt0111161")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("remove deletes the entry", func(t *testing.T) {
		require.NoError(t, repo.Watchlist().Remove(ctx, user.ID, "tt0111161"))

		items, err := repo.Watchlist().ListByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		assert.NoError(t, repo.Watchlist().Remove(ctx, user.ID, "tt0111161"))
	})
}
