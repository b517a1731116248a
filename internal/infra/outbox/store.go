// Package outbox persists event records in MongoDB and relays them to the
// broker, so a broker outage never loses a published dashboard or booking.
package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "bookingengine/internal/app/outbox"
)

const (
	collectionName = "event_outbox"

	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

type Store struct {
	col *mongo.Collection
	now func() time.Time
}

func NewStore(ctx context.Context, db *mongo.Database) *Store {
	col := db.Collection(collectionName)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
		{Keys: bson.D{{Key: "sent_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(int32((72 * time.Hour).Seconds())).SetSparse(true)},
	})
	return &Store{col: col, now: time.Now}
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	_, err := s.col.InsertOne(ctx, newEventDocument(record, s.now().UTC()))
	return err
}

type EventDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   *time.Time        `bson:"claimed_at,omitempty"`
	SentAt      *time.Time        `bson:"sent_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
}

func newEventDocument(rec appoutbox.EventRecord, now time.Time) EventDocument {
	return EventDocument{
		ID:          rec.ID,
		Name:        rec.Name,
		Payload:     rec.Payload,
		OccurredAt:  rec.OccurredAt,
		Aggregate:   rec.Aggregate,
		Headers:     rec.Headers,
		State:       stateNew,
		NextAttempt: now,
		CreatedAt:   now,
	}
}

func (d EventDocument) Record() appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         d.ID,
		Name:       d.Name,
		Payload:    d.Payload,
		OccurredAt: d.OccurredAt,
		Aggregate:  d.Aggregate,
		Headers:    d.Headers,
	}
}

// Claim takes the next due record for workerID. It returns nil when nothing
// is due.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := s.now().UTC()
	filter := bson.M{"state": bson.M{"$in": []string{stateNew, stateFailed}}, "next_attempt_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.After)
	var doc EventDocument
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"state": stateSent, "sent_at": s.now().UTC()}})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"state":           stateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}

var (
	_ appoutbox.Outbox = (*Store)(nil)
	_ Queue            = (*Store)(nil)
)
