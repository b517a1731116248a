package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Inbox remembers which broker events a consumer already applied.
type Inbox struct {
	col      *mongo.Collection
	consumer string
}

func NewInbox(ctx context.Context, db *mongo.Database, consumer string) *Inbox {
	col := db.Collection("app_inbox")
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Inbox{col: col, consumer: consumer}
}

// Seen records eventID and reports whether it had been recorded before.
func (s *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}
