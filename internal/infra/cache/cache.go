// Package cache keeps accommodation summaries and ratings in Redis in front of
// the slower lookups. Redis failures never fail a request: the read falls
// through to the wrapped lookup and the error is logged.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
)

const (
	summaryPrefix = "bookingengine:acc:summary:"
	ratingPrefix  = "bookingengine:acc:rating:"
)

type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	Logger *slog.Logger
}

func New(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, Logger: logger}
}

// Connect dials Redis and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func summaryKey(id booking.AccommodationID) string { return summaryPrefix + string(id) }
func ratingKey(id booking.AccommodationID) string  { return ratingPrefix + string(id) }

func (c *Cache) Summaries(next ports.AccommodationLookup) ports.AccommodationLookup {
	return summaryCache{cache: c, next: next}
}

func (c *Cache) Ratings(next ports.RatingSource) ports.RatingSource {
	return ratingCache{cache: c, next: next}
}

func (c *Cache) InvalidateSummary(ctx context.Context, id booking.AccommodationID) error {
	return c.client.Del(ctx, summaryKey(id)).Err()
}

func (c *Cache) InvalidateRating(ctx context.Context, id booking.AccommodationID) error {
	return c.client.Del(ctx, ratingKey(id)).Err()
}

func load[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("cache read failed", key, err)
		}
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		c.warn("cache entry unreadable", key, err)
		return out, false
	}
	return out, true
}

func store(ctx context.Context, c *Cache, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.warn("cache encode failed", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.warn("cache write failed", key, err)
	}
}

func (c *Cache) warn(msg, key string, err error) {
	if c.Logger != nil {
		c.Logger.Warn(msg, "key", key, "err", err)
	}
}

type summaryCache struct {
	cache *Cache
	next  ports.AccommodationLookup
}

func (s summaryCache) Summary(ctx context.Context, id booking.AccommodationID) (booking.AccommodationSummary, error) {
	key := summaryKey(id)
	if v, ok := load[booking.AccommodationSummary](ctx, s.cache, key); ok {
		return v, nil
	}
	v, err := s.next.Summary(ctx, id)
	if err != nil {
		return booking.AccommodationSummary{}, err
	}
	store(ctx, s.cache, key, v)
	return v, nil
}

type ratingCache struct {
	cache *Cache
	next  ports.RatingSource
}

func (r ratingCache) AverageRating(ctx context.Context, id booking.AccommodationID) (float64, error) {
	key := ratingKey(id)
	if v, ok := load[float64](ctx, r.cache, key); ok {
		return v, nil
	}
	v, err := r.next.AverageRating(ctx, id)
	if err != nil {
		return 0, err
	}
	store(ctx, r.cache, key, v)
	return v, nil
}

var (
	_ ports.AccommodationLookup = summaryCache{}
	_ ports.RatingSource        = ratingCache{}
)
