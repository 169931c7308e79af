package movie

import (
	"github.com/cinetrack/cinetrack/internal/movie/repository"
	"github.com/cinetrack/cinetrack/internal/movie/service"
	"go.uber.org/fx"
)

var Module = fx.Module("movie.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
