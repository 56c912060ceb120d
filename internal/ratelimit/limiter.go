// Package ratelimit gates team generation per client identifier.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
)

// ErrStoreUnavailable wraps any failure to reach the counter store
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// Limiter decides whether one more request from identifier is allowed and records it
type Limiter interface {
	Check(ctx context.Context, identifier string) (Decision, error)
}

// Decision is the outcome of a single Check. On error Limit and Reset are still populated.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// ResetEpochMillis returns the reset instant in milliseconds since the Unix epoch
func (d Decision) ResetEpochMillis() int64 {
	return d.Reset.UnixMilli()
}

// RetryAfter returns the time until reset, never negative
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if wait := d.Reset.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Rate is a number of requests per period
type Rate struct {
	Limit  int
	Period time.Duration
}

// ParseRate reads the "<limit>-<S|M|H|D>" format, e.g. "5-D"
func ParseRate(formatted string) (Rate, error) {
	r, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}
	if r.Limit <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: limit must be positive", formatted)
	}
	return Rate{Limit: int(r.Limit), Period: r.Period}, nil
}

// String renders the rate in the format ParseRate reads. Periods that have no
// single-letter unit render as "<limit>-<duration>" and are not parseable.
func (r Rate) String() string {
	unit := map[time.Duration]string{
		time.Second:    "S",
		time.Minute:    "M",
		time.Hour:      "H",
		24 * time.Hour: "D",
	}[r.Period]
	if unit == "" {
		return fmt.Sprintf("%d-%s", r.Limit, r.Period)
	}
	return fmt.Sprintf("%d-%s", r.Limit, unit)
}

func (r Rate) ulule() limiter.Rate {
	return limiter.Rate{Limit: int64(r.Limit), Period: r.Period, Formatted: r.String()}
}
