package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/movie/domain"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, movie *domain.Movie) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO movies (id, title, slug, genre, release_year, description, director, duration_minutes, poster_url, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movie.ID,
		movie.Title,
		movie.Slug,
		movie.Genre,
		movie.ReleaseYear,
		movie.Description,
		movie.Director,
		movie.DurationMinutes,
		movie.PosterURL,
		movie.Metadata,
		movie.CreatedAt,
		movie.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Movie, error) {
	var movie domain.Movie
	err := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ?", id).
		Scan(&movie).Error
	if err != nil {
		return nil, err
	}
	if movie.ID == 0 {
		return nil, nil
	}
	return &movie, nil
}

func (r *repo) FindByTitle(ctx context.Context, db *gorm.DB, title string) (*domain.Movie, error) {
	var movie domain.Movie
	err := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("title = ?", title).
		Scan(&movie).Error
	if err != nil {
		return nil, err
	}
	if movie.ID == 0 {
		return nil, nil
	}
	return &movie, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Page) ([]*domain.Movie, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Movie{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movies []*domain.Movie
	err := page.Apply(db.WithContext(ctx).Model(&domain.Movie{})).
		Order("created_at desc, id desc").
		Find(&movies).Error
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, movie *domain.Movie) error {
	return db.WithContext(ctx).Exec(
		`UPDATE movies
		 SET title = ?, slug = ?, genre = ?, release_year = ?, description = ?, director = ?, duration_minutes = ?, poster_url = ?, updated_at = ?
		 WHERE id = ?`,
		movie.Title,
		movie.Slug,
		movie.Genre,
		movie.ReleaseYear,
		movie.Description,
		movie.Director,
		movie.DurationMinutes,
		movie.PosterURL,
		movie.UpdatedAt,
		movie.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM movies WHERE id = ?`, id).Error
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
