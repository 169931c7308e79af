package migration

import (
	"github.com/cinetrack/cinetrack/internal/config"
	moviedomain "github.com/cinetrack/cinetrack/internal/movie/domain"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	userdomain "github.com/cinetrack/cinetrack/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql deployments are dev-oriented; the schema
			// follows the models directly
			return conn.AutoMigrate(
				&userdomain.User{},
				&moviedomain.Movie{},
				&ratingdomain.Rating{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
