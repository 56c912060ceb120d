package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testWindow = 24 * time.Hour

// windowStart returns the first instant of window number index
func windowStart(index int64) time.Time {
	return time.UnixMilli(index * testWindow.Milliseconds())
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// mockLimiter is a Limiter with a pluggable Check
type mockLimiter struct {
	checkFunc func(ctx context.Context, identifier string) (Decision, error)
	calls     int
}

func (m *mockLimiter) Check(ctx context.Context, identifier string) (Decision, error) {
	m.calls++
	if m.checkFunc != nil {
		return m.checkFunc(ctx, identifier)
	}
	return Decision{Allowed: true, Limit: 5, Remaining: 4}, nil
}

// checkConcurrently fires n Checks for one identifier at once and returns how many were allowed
func checkConcurrently(t *testing.T, l Limiter, identifier string, n int) int {
	t.Helper()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
		start   = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			d, err := l.Check(context.Background(), identifier)
			if err != nil {
				t.Errorf("unexpected error %v", err)
				return
			}
			if d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	return int(allowed.Load())
}
