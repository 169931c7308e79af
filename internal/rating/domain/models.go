package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Rating is a single user's rating of a single movie. At most one row
// exists per (user, movie) pair; repeated rates update the row in place.
type Rating struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex:idx_ratings_user_movie;index:idx_ratings_user" json:"userId"`
	MovieID   snowflake.ID `gorm:"not null;uniqueIndex:idx_ratings_user_movie;index:idx_ratings_movie" json:"movieId"`
	Value     float64      `gorm:"not null" json:"value"`
	Review    *string      `json:"review,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// Stats is the derived aggregate over a set of rating rows. Average is nil
// when the set is empty; it is never persisted, always recomputed from the
// store of record (or served from cache until invalidation).
type Stats struct {
	Average *float64 `json:"averageRating"`
	Count   int64    `json:"totalRatings"`
}
