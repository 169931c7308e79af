package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, movie *Movie) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Movie, error)
	FindByTitle(ctx context.Context, db *gorm.DB, title string) (*Movie, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Page) ([]*Movie, int64, error)
	Update(ctx context.Context, db *gorm.DB, movie *Movie) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
