package rating

import (
	"github.com/cinetrack/cinetrack/internal/rating/repository"
	"github.com/cinetrack/cinetrack/internal/rating/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
