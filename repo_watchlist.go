package flix

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Watchlist persists the movies a user intends to watch.
type Watchlist interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*WatchlistItem, error)
	Add(ctx context.Context, item *WatchlistItem) error
	MarkWatched(ctx context.Context, userID uuid.UUID, movieID string) error
	Remove(ctx context.Context, userID uuid.UUID, movieID string) error
	Contains(ctx context.Context, userID uuid.UUID, movieID string) (bool, error)
}

type watchlist struct {
	db *bun.DB
}

func NewWatchlistRepository(db *bun.DB) Watchlist {
	return &watchlist{db: db}
}

func (w *watchlist) ListByUser(ctx context.Context, userID uuid.UUID) ([]*WatchlistItem, error) {
	var models []*WatchlistItem
	err := w.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*WatchlistItem{}, nil
		}
		return nil, err
	}
	return models, nil
}

// Add is idempotent, re-adding a movie keeps the original entry.
func (w *watchlist) Add(ctx context.Context, item *WatchlistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	_, err := w.db.NewInsert().
		Model(item).
		On("CONFLICT (user_id, movie_id) DO NOTHING").
		Exec(ctx)

	return err
}

func (w *watchlist) MarkWatched(ctx context.Context, userID uuid.UUID, movieID string) error {
	now := time.Now()
	res, err := w.db.NewUpdate().
		Model((*WatchlistItem)(nil)).
		Set("watched_at = ?", now).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errors.New("watchlist item not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithMetadata(map[string]any{"movie_id": movieID})
	}

	return nil
}

func (w *watchlist) Remove(ctx context.Context, userID uuid.UUID, movieID string) error {
	_, err := w.db.NewDelete().
		Model((*WatchlistItem)(nil)).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Exec(ctx)
	return err
}

func (w *watchlist) Contains(ctx context.Context, userID uuid.UUID, movieID string) (bool, error) {
	return w.db.NewSelect().
		Model((*WatchlistItem)(nil)).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Exists(ctx)
}
