package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
)

type countingLookup struct {
	calls int
	err   error
}

func (l *countingLookup) Summary(_ context.Context, id booking.AccommodationID) (booking.AccommodationSummary, error) {
	l.calls++
	if l.err != nil {
		return booking.AccommodationSummary{}, l.err
	}
	return booking.AccommodationSummary{Title: "Casa " + string(id)}, nil
}

func (l *countingLookup) AverageRating(context.Context, booking.AccommodationID) (float64, error) {
	l.calls++
	return 4.2, l.err
}

// unreachable points at a closed port so every command fails fast.
func unreachable(t *testing.T) (*Cache, *bytes.Buffer) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	var buf bytes.Buffer
	return New(client, time.Minute, slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

func TestSummaryFallsThroughWhenRedisIsDown(t *testing.T) {
	c, logs := unreachable(t)
	next := &countingLookup{}
	lookup := c.Summaries(next)

	for i := 0; i < 2; i++ {
		got, err := lookup.Summary(context.Background(), "a1")
		if err != nil || got.Title != "Casa a1" {
			t.Fatalf("summary = %+v, %v", got, err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("calls = %d", next.calls)
	}
	if !strings.Contains(logs.String(), "cache read failed") || !strings.Contains(logs.String(), summaryPrefix+"a1") {
		t.Fatalf("logs = %s", logs.String())
	}
}

func TestLookupErrorsPassThrough(t *testing.T) {
	c, _ := unreachable(t)
	next := &countingLookup{err: ports.ErrNotFound}
	if _, err := c.Summaries(next).Summary(context.Background(), "a1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("summary err = %v", err)
	}
	if _, err := c.Ratings(next).AverageRating(context.Background(), "a1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("rating err = %v", err)
	}
}

func TestRatingFallsThrough(t *testing.T) {
	c, _ := unreachable(t)
	got, err := c.Ratings(&countingLookup{}).AverageRating(context.Background(), "a1")
	if err != nil || got != 4.2 {
		t.Fatalf("rating = %v, %v", got, err)
	}
}

func TestInvalidateReportsRedisErrors(t *testing.T) {
	c, _ := unreachable(t)
	if err := c.InvalidateSummary(context.Background(), "a1"); err == nil {
		t.Fatal("expected error from unreachable redis")
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	if summaryKey("a1") == ratingKey("a1") {
		t.Fatal("summary and rating keys collide")
	}
	if New(nil, 0, nil).ttl != 5*time.Minute {
		t.Fatal("default ttl not applied")
	}
}
