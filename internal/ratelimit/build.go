package ratelimit

import (
	"fmt"
	"time"

	"github.com/benvon/team-builder/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options selects and configures the limiter stack
type Options struct {
	Algorithm      string
	Store          string
	Prefix         string
	Rate           Rate
	Analytics      bool
	ConfigStore    ConfigStore
	ReloadInterval time.Duration
}

// OptionsFromConfig maps application configuration to limiter options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Algorithm:      cfg.RateLimitAlgorithm,
		Store:          cfg.RateLimitStore,
		Prefix:         cfg.RateLimitPrefix,
		Rate:           Rate{Limit: cfg.TeamsPerDayLimit, Period: cfg.RateLimitWindow},
		Analytics:      cfg.RateLimitAnalytics,
		ReloadInterval: cfg.RateLimitReloadInterval,
	}
}

// Build assembles the limiter: algorithm, optional hot reload, optional analytics.
// The returned Reloader is nil unless opts.ConfigStore is set; the caller starts it.
func Build(opts Options, client *redis.Client, log *zap.Logger) (Limiter, *Reloader, error) {
	factory, err := newFactory(opts, client)
	if err != nil {
		return nil, nil, err
	}

	var (
		l        Limiter
		reloader *Reloader
	)
	if opts.ConfigStore != nil {
		reloader = NewReloader(opts.ConfigStore, factory, opts.Rate, log, opts.ReloadInterval)
		l = reloader
	} else {
		l = factory(opts.Rate)
	}

	if opts.Analytics && opts.Store == config.RateLimitStoreRedis {
		l = NewAnalytics(l, client, opts.Prefix, log)
	}

	return l, reloader, nil
}

func newFactory(opts Options, client *redis.Client) (Factory, error) {
	if opts.Store == config.RateLimitStoreMemory {
		store := NewMemoryStore(opts.Prefix)
		return func(r Rate) Limiter { return NewFixedWindow(store, r) }, nil
	}
	if client == nil {
		return nil, fmt.Errorf("redis client is required for the %q store", opts.Store)
	}

	switch opts.Algorithm {
	case config.RateLimitAlgorithmSliding:
		return func(r Rate) Limiter { return NewSlidingWindow(client, opts.Prefix, r) }, nil
	case config.RateLimitAlgorithmFixed:
		store, err := NewRedisStore(client, opts.Prefix)
		if err != nil {
			return nil, err
		}
		return func(r Rate) Limiter { return NewFixedWindow(store, r) }, nil
	default:
		return nil, fmt.Errorf("unknown rate limit algorithm %q", opts.Algorithm)
	}
}
