package user

import (
	"github.com/cinetrack/cinetrack/internal/user/repository"
	"github.com/cinetrack/cinetrack/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
