package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Rating, error)
	FindByUserAndMovie(ctx context.Context, db *gorm.DB, userID, movieID snowflake.ID) (*Rating, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Rating, error)
	FindByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) ([]*Rating, error)

	// Upsert inserts the rating or, when the (user, movie) pair already
	// has a row, updates value/review/updated_at in place. Single atomic
	// statement; concurrent upserts for the same pair serialize to one row.
	Upsert(ctx context.Context, db *gorm.DB, rating *Rating) error

	Update(ctx context.Context, db *gorm.DB, rating *Rating) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// DeleteByMovie and DeleteByUser remove every rating of a movie or
	// user; used when the movie or user itself is deleted.
	DeleteByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) error
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error

	ExistsByUserAndMovie(ctx context.Context, db *gorm.DB, userID, movieID snowflake.ID) (bool, error)

	// StatsForUser and StatsForMovie aggregate in SQL; (nil, 0) when no rows.
	StatsForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (Stats, error)
	StatsForMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) (Stats, error)
}
