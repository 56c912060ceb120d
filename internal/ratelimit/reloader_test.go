package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benvon/team-builder/internal/models"
	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func typeName(v any) string { return fmt.Sprintf("%T", v) }

// mockConfigStore is a ConfigStore with pluggable behavior
type mockConfigStore struct {
	mu      sync.Mutex
	getFunc func(ctx context.Context) (*models.RatelimitConfig, error)
	saved   []string
	setErr  error
}

func (m *mockConfigStore) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx)
	}
	return nil, nil
}

func (m *mockConfigStore) Set(_ context.Context, cfg *models.RatelimitConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, cfg.Rate)
	return m.setErr
}

// rateLimiter reports the rate it was built with as its limit
type rateLimiter struct{ rate Rate }

func (r rateLimiter) Check(context.Context, string) (Decision, error) {
	return Decision{Allowed: true, Limit: r.rate.Limit, Remaining: r.rate.Limit - 1}, nil
}

func rateFactory(r Rate) Limiter { return rateLimiter{rate: r} }

func TestReloader_SeedsDefaultWhenEmpty(t *testing.T) {
	t.Parallel()

	repo := &mockConfigStore{}
	r := NewReloader(repo, rateFactory, Rate{Limit: 5, Period: 24 * time.Hour}, zapNop(), time.Minute)
	r.Load(context.Background())

	if len(repo.saved) != 1 || repo.saved[0] != "5-D" {
		t.Errorf("Expected default rate 5-D to be saved, got %v", repo.saved)
	}
	d, _ := r.Check(context.Background(), "ip")
	if d.Limit != 5 {
		t.Errorf("Expected limit 5, got %d", d.Limit)
	}
}

func TestReloader_SkipsSeedForUnstorableWindow(t *testing.T) {
	t.Parallel()

	repo := &mockConfigStore{}
	r := NewReloader(repo, rateFactory, Rate{Limit: 5, Period: 12 * time.Hour}, zapNop(), time.Minute)
	r.Load(context.Background())
	r.Load(context.Background())

	if len(repo.saved) != 0 {
		t.Errorf("Expected no seed for a 12h window, got %v", repo.saved)
	}
	if got := r.Rate(); got.Period != 12*time.Hour || got.Limit != 5 {
		t.Errorf("Expected default rate to stay in force, got %s", got)
	}
}

func TestReloader_SwapsOnStoredRate(t *testing.T) {
	t.Parallel()

	rate := "10-D"
	repo := &mockConfigStore{
		getFunc: func(context.Context) (*models.RatelimitConfig, error) {
			return &models.RatelimitConfig{Rate: rate}, nil
		},
	}
	r := NewReloader(repo, rateFactory, Rate{Limit: 5, Period: 24 * time.Hour}, zapNop(), time.Minute)

	r.Load(context.Background())
	if got := r.Rate(); got.Limit != 10 {
		t.Fatalf("Expected rate 10-D after load, got %s", got)
	}
	if len(repo.saved) != 0 {
		t.Errorf("Expected no save when a rate is stored, got %v", repo.saved)
	}

	rate = "3-H"
	r.Load(context.Background())
	d, _ := r.Check(context.Background(), "ip")
	if d.Limit != 3 {
		t.Errorf("Expected limit 3 after reload, got %d", d.Limit)
	}
}

func TestReloader_KeepsCurrentOnFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		get  func(context.Context) (*models.RatelimitConfig, error)
	}{
		{
			name: "store error",
			get: func(context.Context) (*models.RatelimitConfig, error) {
				return nil, errors.New("connection refused")
			},
		},
		{
			name: "invalid rate",
			get: func(context.Context) (*models.RatelimitConfig, error) {
				return &models.RatelimitConfig{Rate: "lots-per-day"}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockConfigStore{getFunc: tt.get}
			r := NewReloader(repo, rateFactory, Rate{Limit: 5, Period: 24 * time.Hour}, zapNop(), time.Minute)
			r.Load(context.Background())

			d, err := r.Check(context.Background(), "ip")
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if d.Limit != 5 {
				t.Errorf("Expected default limit to stay in force, got %d", d.Limit)
			}
		})
	}
}

func TestReloader_StartStopsOnCancel(t *testing.T) {
	t.Parallel()

	r := NewReloader(&mockConfigStore{}, rateFactory, Rate{Limit: 5, Period: time.Hour}, zapNop(), time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
