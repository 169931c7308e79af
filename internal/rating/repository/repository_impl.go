package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/rating/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Rating, error) {
	var rating domain.Rating
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, movie_id, value, review, created_at, updated_at
		 FROM ratings WHERE id = ?`,
		id,
	).Scan(&rating).Error
	if err != nil {
		return nil, err
	}
	if rating.ID == 0 {
		return nil, nil
	}
	return &rating, nil
}

func (r *repo) FindByUserAndMovie(ctx context.Context, db *gorm.DB, userID, movieID snowflake.ID) (*domain.Rating, error) {
	var rating domain.Rating
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, movie_id, value, review, created_at, updated_at
		 FROM ratings WHERE user_id = ? AND movie_id = ?`,
		userID,
		movieID,
	).Scan(&rating).Error
	if err != nil {
		return nil, err
	}
	if rating.ID == 0 {
		return nil, nil
	}
	return &rating, nil
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Rating, error) {
	var ratings []*domain.Rating
	err := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *repo) FindByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) ([]*domain.Rating, error) {
	var ratings []*domain.Rating
	err := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("movie_id = ?", movieID).
		Order("created_at desc, id desc").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, rating *domain.Rating) error {
	// One statement so concurrent rates for the same pair serialize on the
	// unique index instead of racing a read-then-write.
	err := db.WithContext(ctx).Exec(
		`INSERT INTO ratings (id, user_id, movie_id, value, review, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, movie_id)
		 DO UPDATE SET value = excluded.value, review = excluded.review, updated_at = excluded.updated_at`,
		rating.ID,
		rating.UserID,
		rating.MovieID,
		rating.Value,
		rating.Review,
		rating.CreatedAt,
		rating.UpdatedAt,
	).Error
	if err != nil {
		return err
	}

	stored, err := r.FindByUserAndMovie(ctx, db, rating.UserID, rating.MovieID)
	if err != nil {
		return err
	}
	if stored != nil {
		*rating = *stored
	}
	return nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rating *domain.Rating) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ratings SET value = ?, review = ?, updated_at = ? WHERE id = ?`,
		rating.Value,
		rating.Review,
		rating.UpdatedAt,
		rating.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM ratings WHERE id = ?`, id).Error
}

func (r *repo) DeleteByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM ratings WHERE movie_id = ?`, movieID).Error
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM ratings WHERE user_id = ?`, userID).Error
}

func (r *repo) ExistsByUserAndMovie(ctx context.Context, db *gorm.DB, userID, movieID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) StatsForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (domain.Stats, error) {
	return r.stats(ctx, db, "user_id", userID)
}

func (r *repo) StatsForMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) (domain.Stats, error) {
	return r.stats(ctx, db, "movie_id", movieID)
}

func (r *repo) stats(ctx context.Context, db *gorm.DB, column string, id snowflake.ID) (domain.Stats, error) {
	var row struct {
		AvgRating    *float64 `gorm:"column:avg_rating"`
		TotalRatings int64    `gorm:"column:total_ratings"`
	}
	err := db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("AVG(value) AS avg_rating, COUNT(id) AS total_ratings").
		Where(column+" = ?", id).
		Scan(&row).Error
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{Average: row.AvgRating, Count: row.TotalRatings}, nil
}
