package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// MonthCache keeps the per-day appointment counts of a month in Redis so
// the calendar's indicator dots do not hit Postgres on every page load.
// Any appointment write invalidates the affected months.
type MonthCache struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewMonthCache creates a month cache. A nil client disables caching; all
// operations become no-ops and reads fall through to the store.
func NewMonthCache(client *redis.Client, ttl time.Duration) *MonthCache {
	return &MonthCache{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("clinic.internal.schedule.monthcache"),
	}
}

// Enabled reports whether a Redis client is configured.
func (c *MonthCache) Enabled() bool {
	return c != nil && c.redis != nil
}

// Get loads the cached day counts for a month. The second return value is
// false on a miss.
func (c *MonthCache) Get(ctx context.Context, year int, month time.Month) (map[string]int, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	ctx, span := c.tracer.Start(ctx, "schedule.monthcache.get")
	defer span.End()

	data, err := c.redis.Get(ctx, monthKey(year, month)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("schedule: month cache get: %w", err)
	}

	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("schedule: month cache decode: %w", err)
	}
	return counts, true, nil
}

// Set stores the day counts for a month.
func (c *MonthCache) Set(ctx context.Context, year int, month time.Month, counts map[string]int) error {
	if !c.Enabled() {
		return nil
	}
	ctx, span := c.tracer.Start(ctx, "schedule.monthcache.set")
	defer span.End()

	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("schedule: month cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, monthKey(year, month), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("schedule: month cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached months containing the given YYYY-MM-DD
// dates. Unparseable dates are skipped; invalidation is best-effort.
func (c *MonthCache) Invalidate(ctx context.Context, dates ...string) {
	if !c.Enabled() || len(dates) == 0 {
		return
	}
	ctx, span := c.tracer.Start(ctx, "schedule.monthcache.invalidate")
	defer span.End()

	seen := make(map[string]struct{}, len(dates))
	var keys []string
	for _, d := range dates {
		t, err := ParseDate(d)
		if err != nil {
			continue
		}
		key := monthKey(t.Year(), t.Month())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
	}
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("schedule:month:%04d-%02d", year, month)
}
