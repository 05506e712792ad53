package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "staynest/internal/app/outbox"
)

// Record states. NEW and FAILED records are eligible for claiming; CLAIMED
// marks in-flight delivery so concurrent workers skip the record.
const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

const collectionName = "app_outbox"

// Store persists outbox records in Mongo. Add runs inside the command's
// transaction via the session context; the worker drains records afterwards.
type Store struct {
	records *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	records := db.Collection(collectionName)
	_, _ = records.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}},
	})
	return &Store{records: records}
}

func (s *Store) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := time.Now().UTC()
	_, err := s.records.InsertOne(ctx, bson.M{
		"_id":             record.ID,
		"name":            record.Name,
		"payload":         record.Payload,
		"occurred_at":     record.OccurredAt,
		"aggregate":       record.Aggregate,
		"headers":         record.Headers,
		"state":           stateNew,
		"attempts":        0,
		"next_attempt_at": now,
		"created_at":      now,
	})
	return err
}

// Flush is a no-op: records are already durable once Add commits, and the
// polling worker handles delivery.
func (s *Store) Flush(context.Context) error {
	return nil
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
	ClaimedBy   string            `bson:"claimed_by"`
	ClaimedAt   time.Time         `bson:"claimed_at"`
	SentAt      time.Time         `bson:"sent_at"`
	LastError   string            `bson:"last_error"`
}

// Claim atomically takes one due record for the worker, or returns nil when
// nothing is pending.
func (s *Store) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	now := time.Now().UTC()
	var doc EventDocument
	err := s.records.FindOneAndUpdate(ctx,
		bson.M{
			"state":           bson.M{"$in": []string{stateNew, stateFailed}},
			"next_attempt_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.records.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": stateSent, "sent_at": time.Now().UTC()},
	})
	return err
}

// MarkFailed returns the record to the retry pool with a backoff deadline.
func (s *Store) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.records.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"state":           stateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}
