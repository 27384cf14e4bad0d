package flix

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Ratings persists per-user movie scores.
type Ratings interface {
	GetByUserAndMovie(ctx context.Context, userID uuid.UUID, movieID string) (*Rating, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Rating, error)
	Rate(ctx context.Context, rating *Rating) error
	Delete(ctx context.Context, userID uuid.UUID, movieID string) error
	AverageForMovie(ctx context.Context, movieID string) (float64, int, error)
}

type ratings struct {
	db *bun.DB
}

func NewRatingsRepository(db *bun.DB) Ratings {
	return &ratings{db: db}
}

func (r *ratings) GetByUserAndMovie(ctx context.Context, userID uuid.UUID, movieID string) (*Rating, error) {
	var model Rating
	err := r.db.NewSelect().
		Model(&model).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("rating not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithMetadata(map[string]any{"movie_id": movieID})
		}
		return nil, err
	}
	return &model, nil
}

func (r *ratings) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Rating, error) {
	var models []*Rating
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*Rating{}, nil
		}
		return nil, err
	}
	return models, nil
}

// Rate inserts or replaces the user's score for a movie.
func (r *ratings) Rate(ctx context.Context, rating *Rating) error {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	now := time.Now()
	rating.UpdatedAt = &now

	_, err := r.db.NewInsert().
		Model(rating).
		On("CONFLICT (user_id, movie_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("review = EXCLUDED.review").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}

func (r *ratings) Delete(ctx context.Context, userID uuid.UUID, movieID string) error {
	_, err := r.db.NewDelete().
		Model((*Rating)(nil)).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Exec(ctx)
	return err
}

// AverageForMovie returns the mean score across all users plus the number of
// ratings counted. A movie nobody rated yields (0, 0, nil).
func (r *ratings) AverageForMovie(ctx context.Context, movieID string) (float64, int, error) {
	var result struct {
		Average sql.NullFloat64 `bun:"average"`
		Total   int             `bun:"total"`
	}

	err := r.db.NewSelect().
		Model((*Rating)(nil)).
		ColumnExpr("AVG(score) AS average").
		ColumnExpr("COUNT(*) AS total").
		Where("movie_id = ?", movieID).
		Scan(ctx, &result)
	if err != nil {
		return 0, 0, err
	}

	if !result.Average.Valid {
		return 0, 0, nil
	}

	return result.Average.Float64, result.Total, nil
}
