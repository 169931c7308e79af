package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Email        string       `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// RatingProfile is the materialized view of a user's rating activity:
// identity, derived aggregates and the full rating list. It is what the
// userRatingProfile cache namespace stores.
type RatingProfile struct {
	UserID        snowflake.ID          `json:"userId"`
	UserName      string                `json:"userName"`
	AverageRating *float64              `json:"averageRating"`
	TotalRatings  int64                 `json:"totalRatings"`
	Ratings       []ratingdomain.Rating `json:"ratings"`
}
