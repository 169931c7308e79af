package cache

import (
	"context"

	"github.com/cinetrack/cinetrack/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(provideStore),
	fx.Provide(NewInvalidator),
)

func provideStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (Store, error) {
	if cfg.RedisAddr == "" {
		log.Info("cache backend: in-memory")
		return NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	log.Info("cache backend: redis", zap.String("addr", cfg.RedisAddr))
	return NewRedisStore(client)
}
