package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Movie struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Title           string            `gorm:"not null;uniqueIndex" json:"title"`
	Slug            string            `gorm:"not null;index" json:"slug"`
	Genre           string            `gorm:"not null" json:"genre"`
	ReleaseYear     int               `gorm:"not null" json:"releaseYear"`
	Description     *string           `json:"description,omitempty"`
	Director        *string           `json:"director,omitempty"`
	DurationMinutes *int              `json:"durationMinutes,omitempty"`
	PosterURL       *string           `json:"posterUrl,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:json;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`

	// Derived, never persisted: recomputed from the rating rows on every
	// uncached read. AverageRating is null while the movie has no ratings.
	AverageRating *float64 `gorm:"-" json:"averageRating"`
	TotalRatings  int64    `gorm:"-" json:"totalRatings"`
}
