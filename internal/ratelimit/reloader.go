package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/team-builder/internal/models"
	"go.uber.org/zap"
)

// ConfigStore reads and writes the persisted rate override
type ConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, cfg *models.RatelimitConfig) error
}

// Factory builds a limiter for a rate
type Factory func(Rate) Limiter

// Reloader periodically reloads the rate from a ConfigStore and swaps the limiter in place.
type Reloader struct {
	repo        ConfigStore
	factory     Factory
	defaultRate Rate
	log         *zap.Logger
	interval    time.Duration

	mu      sync.RWMutex
	current Limiter
	rate    Rate
}

// NewReloader creates a reloader that starts out on defaultRate. Call Load before serving.
func NewReloader(repo ConfigStore, factory Factory, defaultRate Rate, log *zap.Logger, interval time.Duration) *Reloader {
	return &Reloader{
		repo:        repo,
		factory:     factory,
		defaultRate: defaultRate,
		log:         log,
		interval:    interval,
		current:     factory(defaultRate),
		rate:        defaultRate,
	}
}

// Start runs the reload loop until ctx is cancelled
func (r *Reloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Load(ctx)
		}
	}
}

// Load reads the stored rate and swaps the limiter if it changed. A missing row is
// seeded with the default rate; unreadable or invalid rows keep the current limiter.
func (r *Reloader) Load(ctx context.Context) {
	cfg, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_ratelimit_config_keeping_current",
			zap.Error(err),
			zap.String("current_rate", r.Rate().String()),
		)
		return
	}

	rate := r.defaultRate
	if cfg != nil && cfg.Rate != "" {
		parsed, err := ParseRate(cfg.Rate)
		if err != nil {
			r.log.Error("failed_to_parse_rate_limit_keeping_current",
				zap.Error(err),
				zap.String("rate_str", cfg.Rate),
			)
			return
		}
		rate = parsed
	} else {
		r.seedDefault(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if rate == r.rate {
		return
	}
	r.current = r.factory(rate)
	r.log.Info("rate_limit_reloaded",
		zap.String("previous_rate", r.rate.String()),
		zap.String("rate", rate.String()),
	)
	r.rate = rate
}

// seedDefault stores the default rate unless its window has no single-letter unit
func (r *Reloader) seedDefault(ctx context.Context) {
	stored := r.defaultRate.String()
	if _, err := ParseRate(stored); err != nil {
		r.log.Debug("default_rate_not_storable_skipping_seed", zap.String("default_rate", stored))
		return
	}
	if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: stored}); err != nil {
		r.log.Error("failed_to_save_default_ratelimit_config",
			zap.Error(err),
			zap.String("default_rate", stored),
		)
	}
}

// Rate returns the rate currently enforced
func (r *Reloader) Rate() Rate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate
}

// Check delegates to the current limiter
func (r *Reloader) Check(ctx context.Context, identifier string) (Decision, error) {
	r.mu.RLock()
	l := r.current
	r.mu.RUnlock()
	return l.Check(ctx, identifier)
}
