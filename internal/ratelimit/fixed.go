package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// FixedWindow counts requests in windows that reset when they expire
type FixedWindow struct {
	limiter *limiter.Limiter
}

// NewFixedWindow creates a fixed window limiter over a ulule store
func NewFixedWindow(store limiter.Store, rate Rate) *FixedWindow {
	return &FixedWindow{limiter: limiter.New(store, rate.ulule())}
}

// NewRedisStore creates a ulule store that keeps counters in Redis
func NewRedisStore(client *redis.Client, prefix string) (limiter.Store, error) {
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for rate limiter: %w", err)
	}
	return store, nil
}

// NewMemoryStore creates a ulule store in process memory. Counters are not
// shared between instances.
func NewMemoryStore(prefix string) limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: time.Minute,
	})
}

// Check counts the request and reports whether it stayed within the limit
func (f *FixedWindow) Check(ctx context.Context, identifier string) (Decision, error) {
	rate := f.limiter.Rate
	lctx, err := f.limiter.Get(ctx, identifier)
	if err != nil {
		return Decision{
			Limit: int(rate.Limit),
			Reset: time.Now().Add(rate.Period),
		}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return Decision{
		Allowed:   !lctx.Reached,
		Limit:     int(lctx.Limit),
		Remaining: int(lctx.Remaining),
		Reset:     time.Unix(lctx.Reset, 0),
	}, nil
}
