package domain

import (
	"context"
	"errors"
)

type CreateRatingRequest struct {
	UserID  string
	MovieID string
	Value   float64
	Review  *string
}

type RateRequest struct {
	UserID  string
	MovieID string
	Value   float64
	Review  *string
}

type UpdateRatingRequest struct {
	ID     string
	Value  *float64
	Review *string
}

type Service interface {
	// Create rejects a second rating for the same (user, movie) pair
	// with ErrAlreadyRated.
	Create(ctx context.Context, req CreateRatingRequest) (Rating, error)
	// Rate upserts: first call creates the row, later calls for the same
	// pair replace value/review in place.
	Rate(ctx context.Context, req RateRequest) (Rating, error)

	GetByID(ctx context.Context, id string) (Rating, error)
	GetByUserAndMovie(ctx context.Context, userID, movieID string) (Rating, error)
	ListByUser(ctx context.Context, userID string) ([]Rating, error)
	ListByMovie(ctx context.Context, movieID string) ([]Rating, error)

	Update(ctx context.Context, req UpdateRatingRequest) (Rating, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound      = errors.New("rating_not_found")
	ErrUserNotFound  = errors.New("rating_user_not_found")
	ErrMovieNotFound = errors.New("rating_movie_not_found")
	ErrAlreadyRated  = errors.New("already_rated")
	ErrUserMismatch  = errors.New("rating_user_mismatch")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidValue  = errors.New("invalid_rating_value")
)
