package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Page) ([]*User, int64, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
