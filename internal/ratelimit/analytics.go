package ratelimit

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/benvon/team-builder/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// AnalyticsRetention is how long daily analytics hashes are kept
	AnalyticsRetention = 30 * 24 * time.Hour

	// DayLayout names analytics days
	DayLayout = "2006-01-02"

	fieldAllowed = "allowed"
	fieldDenied  = "denied"
)

// Usage is the number of allowed and denied checks for a day, optionally for one identifier
type Usage struct {
	Day        string `json:"day"`
	Identifier string `json:"identifier,omitempty"`
	Allowed    int64  `json:"allowed"`
	Denied     int64  `json:"denied"`
}

// Analytics records every decision of the wrapped limiter in Redis hashes.
// Recording is best effort and never changes the decision.
type Analytics struct {
	next   Limiter
	client redis.Cmdable
	prefix string
	log    *zap.Logger
	now    func() time.Time
}

// NewAnalytics wraps next with decision recording
func NewAnalytics(next Limiter, client redis.Cmdable, prefix string, log *zap.Logger) *Analytics {
	return &Analytics{
		next:   next,
		client: client,
		prefix: prefix,
		log:    log,
		now:    time.Now,
	}
}

// Check delegates to the wrapped limiter and records the outcome
func (a *Analytics) Check(ctx context.Context, identifier string) (Decision, error) {
	d, err := a.next.Check(ctx, identifier)
	if err != nil {
		return d, err
	}

	if recErr := a.record(ctx, identifier, d.Allowed); recErr != nil {
		a.log.Warn("failed_to_record_rate_limit_analytics",
			zap.Error(recErr),
			zap.String("identifier", logger.SanitizeIdentifier(identifier)),
		)
	}
	return d, nil
}

func (a *Analytics) record(ctx context.Context, identifier string, allowed bool) error {
	day := a.now().UTC().Format(DayLayout)
	field := fieldDenied
	if allowed {
		field = fieldAllowed
	}

	totals := analyticsKey(a.prefix, day)
	perIdentifier := analyticsIdentifierKey(a.prefix, day, identifier)
	members := analyticsMembersKey(a.prefix, day)

	pipe := a.client.TxPipeline()
	pipe.HIncrBy(ctx, totals, field, 1)
	pipe.HIncrBy(ctx, perIdentifier, field, 1)
	pipe.SAdd(ctx, members, identifier)
	pipe.Expire(ctx, totals, AnalyticsRetention)
	pipe.Expire(ctx, perIdentifier, AnalyticsRetention)
	pipe.Expire(ctx, members, AnalyticsRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record analytics: %w", err)
	}
	return nil
}

// UsageReader reads analytics written by Analytics
type UsageReader struct {
	client redis.Cmdable
	prefix string
}

// NewUsageReader creates a reader for the given key prefix
func NewUsageReader(client redis.Cmdable, prefix string) *UsageReader {
	return &UsageReader{client: client, prefix: prefix}
}

// Day returns the totals for day
func (u *UsageReader) Day(ctx context.Context, day string) (Usage, error) {
	return u.read(ctx, analyticsKey(u.prefix, day), Usage{Day: day})
}

// Identifier returns the counts of one identifier for day
func (u *UsageReader) Identifier(ctx context.Context, day, identifier string) (Usage, error) {
	return u.read(ctx, analyticsIdentifierKey(u.prefix, day, identifier), Usage{Day: day, Identifier: identifier})
}

// Identifiers returns the counts of every identifier seen on day, sorted by identifier
func (u *UsageReader) Identifiers(ctx context.Context, day string) ([]Usage, error) {
	ids, err := u.client.SMembers(ctx, analyticsMembersKey(u.prefix, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	sort.Strings(ids)

	out := make([]Usage, 0, len(ids))
	for _, id := range ids {
		usage, err := u.Identifier(ctx, day, id)
		if err != nil {
			return nil, err
		}
		out = append(out, usage)
	}
	return out, nil
}

func (u *UsageReader) read(ctx context.Context, key string, usage Usage) (Usage, error) {
	fields, err := u.client.HGetAll(ctx, key).Result()
	if err != nil {
		return usage, fmt.Errorf("read analytics %s: %w", key, err)
	}
	usage.Allowed = parseCount(fields[fieldAllowed])
	usage.Denied = parseCount(fields[fieldDenied])
	return usage, nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func analyticsKey(prefix, day string) string {
	return fmt.Sprintf("%s:analytics:%s", prefix, day)
}

func analyticsIdentifierKey(prefix, day, identifier string) string {
	return fmt.Sprintf("%s:analytics:%s:id:%s", prefix, day, identifier)
}

func analyticsMembersKey(prefix, day string) string {
	return fmt.Sprintf("%s:analytics:%s:identifiers", prefix, day)
}
