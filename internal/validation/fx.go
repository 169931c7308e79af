package validation

import (
	"time"

	"github.com/cinetrack/cinetrack/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("validation",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Validator {
		return NewHTTPValidator(cfg.UserServiceURL, cfg.MovieServiceURL, 5*time.Second, log)
	}),
)
