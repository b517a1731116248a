package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	domainbooking "bookingengine/internal/domain/booking"
	domainlistings "bookingengine/internal/domain/listings"
	domainreviews "bookingengine/internal/domain/reviews"
	"bookingengine/internal/domain/shared/events"
)

// Invalidator drops cached accommodation data.
type Invalidator interface {
	InvalidateSummary(ctx context.Context, id domainbooking.AccommodationID) error
	InvalidateRating(ctx context.Context, id domainbooking.AccommodationID) error
}

// Inbox deduplicates redelivered events.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// Topics lists the event names the invalidation handler reacts to.
func Topics(topic func(string) string) []string {
	names := []string{
		domainlistings.EventAccommodationUpdated,
		domainlistings.EventAccommodationDeleted,
		domainreviews.EventReviewSubmitted,
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if topic != nil {
			n = topic(n)
		}
		out = append(out, n)
	}
	return out
}

// InvalidationHandler evicts cached summaries when the catalog changes and
// cached ratings when a review arrives. Unknown events are acknowledged and
// ignored.
type InvalidationHandler struct {
	Cache  Invalidator
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *InvalidationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	base, id, err := decodeMessage(msg)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("dropping unreadable event", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		}
		return nil
	}
	if h.Inbox != nil && header(msg, "event-id") != "" {
		seen, err := h.Inbox.Seen(ctx, header(msg, "event-id"))
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	switch base.EventName() {
	case domainlistings.EventAccommodationUpdated, domainlistings.EventAccommodationDeleted:
		err = h.Cache.InvalidateSummary(ctx, id)
	case domainreviews.EventReviewSubmitted:
		err = h.Cache.InvalidateRating(ctx, id)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalidate %s for %s: %w", base.EventName(), id, err)
	}
	if h.Logger != nil {
		h.Logger.Debug("cache invalidated", "event", base.EventName(), "accommodation_id", id)
	}
	return nil
}

// decodeMessage reads the event name from the headers, falling back to a
// CloudEvents type or the topic, and the accommodation id from the payload.
func decodeMessage(msg *sarama.ConsumerMessage) (events.BaseEvent, domainbooking.AccommodationID, error) {
	var envelope struct {
		Type            string          `json:"type"`
		Data            json.RawMessage `json:"data"`
		AccommodationID string          `json:"accommodation_id"`
	}
	if len(msg.Value) > 0 {
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			return events.BaseEvent{}, "", err
		}
	}
	base := events.BaseEvent{
		Name:      header(msg, "event-name"),
		Aggregate: header(msg, "aggregate-id"),
		Time:      msg.Timestamp,
	}
	if at, err := time.Parse(time.RFC3339Nano, header(msg, "occurred-at")); err == nil {
		base.Time = at
	}
	if base.Name == "" {
		base.Name = strings.TrimSuffix(envelope.Type, ".v1")
	}
	if base.Name == "" {
		base.Name = eventFromTopic(msg.Topic)
	}

	id := envelope.AccommodationID
	if len(envelope.Data) > 0 {
		var data struct {
			AccommodationID string `json:"accommodation_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err == nil && data.AccommodationID != "" {
			id = data.AccommodationID
		}
	}
	if id == "" {
		id = base.Aggregate
	}
	if id == "" {
		return events.BaseEvent{}, "", fmt.Errorf("event %q has no accommodation id", base.Name)
	}
	return base, domainbooking.AccommodationID(id), nil
}

// eventFromTopic strips a "prefix." from topics named after their event.
func eventFromTopic(topic string) string {
	for _, name := range Topics(nil) {
		if topic == name || strings.HasSuffix(topic, "."+name) {
			return name
		}
	}
	return topic
}

func header(msg *sarama.ConsumerMessage, key string) string {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

var _ MessageHandler = (*InvalidationHandler)(nil)
