package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "staynest/internal/domain/user"
)

type OTPStore struct {
	col *mongo.Collection
}

func NewOTPStore(db *mongo.Database) *OTPStore {
	col := db.Collection("app_otp_challenges")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return &OTPStore{col: col}
}

type otpDocument struct {
	ID        string    `bson:"_id"`
	Code      string    `bson:"code"`
	Attempts  int       `bson:"attempts"`
	Consumed  bool      `bson:"consumed"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (s *OTPStore) Save(ctx context.Context, challenge *domainuser.OTPChallenge) error {
	if challenge == nil || strings.TrimSpace(challenge.Email) == "" {
		return domainuser.ErrEmailRequired
	}
	doc := otpDocument{
		ID:        strings.ToLower(strings.TrimSpace(challenge.Email)),
		Code:      challenge.Code,
		Attempts:  challenge.Attempts,
		Consumed:  challenge.Consumed,
		CreatedAt: challenge.CreatedAt,
		ExpiresAt: challenge.ExpiresAt,
	}
	_, err := s.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (s *OTPStore) ByEmail(ctx context.Context, email string) (*domainuser.OTPChallenge, error) {
	var doc otpDocument
	err := s.col.FindOne(ctx, bson.M{"_id": strings.ToLower(strings.TrimSpace(email))}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrOTPNotFound
		}
		return nil, err
	}
	return &domainuser.OTPChallenge{
		Email:     doc.ID,
		Code:      doc.Code,
		Attempts:  doc.Attempts,
		Consumed:  doc.Consumed,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": strings.ToLower(strings.TrimSpace(email))})
	return err
}

var _ domainuser.OTPStore = (*OTPStore)(nil)
