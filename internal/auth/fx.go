package auth

import (
	"github.com/cinetrack/cinetrack/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(func(cfg config.Config) (*TokenService, error) {
		return NewTokenService(cfg.AuthJWTSecret)
	}),
)
