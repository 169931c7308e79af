package stats

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Computer derives aggregate rating statistics from the store of record at
// call time. It holds no mutable state and does no caching; the cache layer
// sits above it.
type Computer struct {
	db   *gorm.DB
	repo ratingdomain.Repository
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Repo ratingdomain.Repository
}

func NewComputer(p Params) *Computer {
	return &Computer{
		db:   p.DB,
		repo: p.Repo,
	}
}

func (c *Computer) MovieStats(ctx context.Context, movieID snowflake.ID) (ratingdomain.Stats, error) {
	return c.repo.StatsForMovie(ctx, c.db, movieID)
}

func (c *Computer) UserStats(ctx context.Context, userID snowflake.ID) (ratingdomain.Stats, error) {
	return c.repo.StatsForUser(ctx, c.db, userID)
}

var Module = fx.Module("stats",
	fx.Provide(NewComputer),
)
