package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript approximates a rolling window from two fixed windows. The
// previous window's count is weighted by how much of it still overlaps the
// rolling window. Returns -1 when the request is rejected, otherwise the
// remaining quota after counting it.
var slidingWindowScript = redis.NewScript(`
local currentKey  = KEYS[1]
local previousKey = KEYS[2]
local limit       = tonumber(ARGV[1])
local now         = tonumber(ARGV[2])
local window      = tonumber(ARGV[3])

local current  = tonumber(redis.call("GET", currentKey) or "0")
local previous = tonumber(redis.call("GET", previousKey) or "0")

local elapsed = (now % window) / window
previous = math.floor((1 - elapsed) * previous)

if previous + current >= limit then
  return -1
end

local value = redis.call("INCR", currentKey)
if value == 1 then
  redis.call("PEXPIRE", currentKey, window * 2 + 1000)
end

return limit - (value + previous)
`)

// SlidingWindow is the default limiter: N requests per rolling window, counted in Redis
type SlidingWindow struct {
	client redis.Scripter
	prefix string
	rate   Rate
	now    func() time.Time
}

// SlidingWindowOption configures a SlidingWindow
type SlidingWindowOption func(*SlidingWindow)

// WithClock overrides the time source
func WithClock(now func() time.Time) SlidingWindowOption {
	return func(s *SlidingWindow) {
		s.now = now
	}
}

// NewSlidingWindow creates a Redis-backed sliding window limiter
func NewSlidingWindow(client redis.Scripter, prefix string, rate Rate, opts ...SlidingWindowOption) *SlidingWindow {
	s := &SlidingWindow{
		client: client,
		prefix: prefix,
		rate:   rate,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check counts one request for identifier if the weighted total is below the limit
func (s *SlidingWindow) Check(ctx context.Context, identifier string) (Decision, error) {
	window := s.rate.Period.Milliseconds()
	now := s.now().UnixMilli()
	index := now / window

	decision := Decision{
		Limit: s.rate.Limit,
		Reset: time.UnixMilli((index + 1) * window),
	}

	keys := []string{s.key(identifier, index), s.key(identifier, index-1)}
	remaining, err := slidingWindowScript.Run(ctx, s.client, keys, s.rate.Limit, now, window).Int64()
	if err != nil {
		return decision, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if remaining < 0 {
		return decision, nil
	}

	decision.Allowed = true
	decision.Remaining = int(remaining)
	return decision, nil
}

func (s *SlidingWindow) key(identifier string, index int64) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, identifier, index)
}
