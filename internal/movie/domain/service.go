package domain

import (
	"context"
	"errors"

	"github.com/cinetrack/cinetrack/pkg/db/pagination"
)

type CreateMovieRequest struct {
	Title           string
	Genre           string
	ReleaseYear     int
	Description     *string
	Director        *string
	DurationMinutes *int
	PosterURL       *string
}

type UpdateMovieRequest struct {
	ID              string
	Title           *string
	Genre           *string
	ReleaseYear     *int
	Description     *string
	Director        *string
	DurationMinutes *int
	PosterURL       *string
}

type ListMoviesRequest struct {
	Page pagination.Page
}

type ListMoviesResponse struct {
	pagination.PageInfo
	Movies []Movie `json:"movies"`
}

type Service interface {
	Create(ctx context.Context, req CreateMovieRequest) (Movie, error)
	GetByID(ctx context.Context, id string) (Movie, error)
	List(ctx context.Context, req ListMoviesRequest) (ListMoviesResponse, error)
	Update(ctx context.Context, req UpdateMovieRequest) (Movie, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

var (
	ErrNotFound     = errors.New("movie_not_found")
	ErrTitleExists  = errors.New("movie_title_exists")
	ErrInvalidID    = errors.New("invalid_movie_id")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidGenre = errors.New("invalid_genre")
	ErrInvalidYear  = errors.New("invalid_release_year")
)
