package inbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "app_inbox"

// Store records which event ids a consumer has already processed. Insert-or-
// conflict on a unique index makes Seen atomic across consumer instances.
type Store struct {
	events   *mongo.Collection
	consumer string
}

func NewStore(db *mongo.Database, consumer string) *Store {
	events := db.Collection(collectionName)
	_, _ = events.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Store{events: events, consumer: consumer}
}

// Seen marks the event as handled and reports whether it already was.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := s.events.InsertOne(ctx, bson.M{
		"event_id":    eventID,
		"consumer":    s.consumer,
		"received_at": time.Now().UTC(),
	})
	switch {
	case err == nil:
		return false, nil
	case mongo.IsDuplicateKeyError(err):
		return true, nil
	default:
		return false, err
	}
}
