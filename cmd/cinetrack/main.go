package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/cache"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/migration"
	"github.com/cinetrack/cinetrack/internal/movie"
	"github.com/cinetrack/cinetrack/internal/observability"
	"github.com/cinetrack/cinetrack/internal/rating"
	"github.com/cinetrack/cinetrack/internal/server"
	"github.com/cinetrack/cinetrack/internal/stats"
	"github.com/cinetrack/cinetrack/internal/user"
	"github.com/cinetrack/cinetrack/internal/validation"
	"github.com/cinetrack/cinetrack/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		cache.Module,
		auth.Module,
		validation.Module,

		stats.Module,
		rating.Module,
		movie.Module,
		user.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
