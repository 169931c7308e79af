package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Policy is the hot-reloadable part of the catalog configuration: the
// pieces operators tune without a redeploy.
type Policy struct {
	RatingMin       float64 `mapstructure:"rating_min"`
	RatingMax       float64 `mapstructure:"rating_max"`
	DefaultPageSize int     `mapstructure:"default_page_size"`
	MaxPageSize     int     `mapstructure:"max_page_size"`
	CacheEnabled    bool    `mapstructure:"cache_enabled"`
}

func DefaultPolicy() Policy {
	return Policy{
		RatingMin:       1.0,
		RatingMax:       10.0,
		DefaultPageSize: 10,
		MaxPageSize:     100,
		CacheEnabled:    true,
	}
}

// PolicyHolder serves the current policy to concurrent readers and swaps
// it atomically when the config file changes on disk.
type PolicyHolder struct {
	current atomic.Value // holds Policy
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/cinetrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CINETRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PolicyHolder{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		holder.current.Store(DefaultPolicy())
		return holder, nil
	}

	policy, err := decodePolicy(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(policy)

	v.OnConfigChange(func(_ fsnotify.Event) {
		reloaded, err := decodePolicy(v)
		if err != nil {
			zap.L().Warn("catalog policy reload failed", zap.Error(err))
			return
		}
		holder.current.Store(reloaded)
	})
	v.WatchConfig()

	return holder, nil
}

// StaticPolicyHolder pins the holder to a fixed policy; no file watching.
func StaticPolicyHolder(policy Policy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

// Current returns the active policy.
func (h *PolicyHolder) Current() Policy {
	if h == nil {
		return DefaultPolicy()
	}
	value, ok := h.current.Load().(Policy)
	if !ok {
		return DefaultPolicy()
	}
	return value
}

func decodePolicy(v *viper.Viper) (Policy, error) {
	policy := DefaultPolicy()
	if err := v.Unmarshal(&policy); err != nil {
		return Policy{}, err
	}
	if policy.RatingMin >= policy.RatingMax {
		return Policy{}, errors.New("rating bounds are inverted")
	}
	if policy.DefaultPageSize <= 0 || policy.MaxPageSize < policy.DefaultPageSize {
		return Policy{}, errors.New("page size bounds are invalid")
	}
	return policy, nil
}
