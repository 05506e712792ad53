package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainauth "staynest/internal/domain/auth"
	domainuser "staynest/internal/domain/user"
)

// SessionStore keeps opaque bearer sessions. Expired documents are reaped by
// a TTL index on expires_at, Get also checks expiry for the window before
// the reaper runs.
type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	col := db.Collection("app_sessions")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}})
	return &SessionStore{col: col}
}

type sessionDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Roles     []string  `bson:"roles"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return errors.New("mongo: session required")
	}
	doc := sessionDocument{
		ID:        string(session.Token),
		UserID:    string(session.UserID),
		Roles:     rolesToStrings(session.Roles),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
	_, err := s.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var doc sessionDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(token)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	if time.Now().After(doc.ExpiresAt) {
		return nil, domainauth.ErrSessionNotFound
	}
	return &domainauth.Session{
		Token:     domainauth.Token(doc.ID),
		UserID:    domainuser.ID(doc.UserID),
		Roles:     stringsToRoles(doc.Roles),
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": string(token)})
	return err
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"user_id": string(userID)})
	return err
}

func rolesToStrings(roles []domainuser.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func stringsToRoles(raw []string) []domainuser.Role {
	out := make([]domainuser.Role, 0, len(raw))
	for _, r := range raw {
		out = append(out, domainuser.Role(r))
	}
	return out
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
