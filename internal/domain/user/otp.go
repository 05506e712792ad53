package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOTPNotFound = errors.New("user: otp challenge not found")
	ErrOTPExpired  = errors.New("user: otp challenge expired")
	ErrOTPMismatch = errors.New("user: otp code does not match")
	ErrOTPConsumed = errors.New("user: otp challenge already used")
)

const maxOTPAttempts = 5

// OTPChallenge is a short-lived one-time code sent to a guest's email to
// convert their walk-in account into a full one.
type OTPChallenge struct {
	Email     string
	Code      string
	Attempts  int
	Consumed  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

type OTPStore interface {
	Save(ctx context.Context, challenge *OTPChallenge) error
	ByEmail(ctx context.Context, email string) (*OTPChallenge, error)
	Delete(ctx context.Context, email string) error
}

func NewOTPChallenge(email, code string, ttl time.Duration, now time.Time) *OTPChallenge {
	now = now.UTC()
	return &OTPChallenge{
		Email:     normalizeEmail(email),
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Verify checks the submitted code, counting failed attempts. The challenge
// becomes unusable once consumed, expired, or after too many failures.
func (c *OTPChallenge) Verify(code string, now time.Time) error {
	if c.Consumed {
		return ErrOTPConsumed
	}
	if !c.ExpiresAt.After(now.UTC()) {
		return ErrOTPExpired
	}
	if c.Attempts >= maxOTPAttempts {
		return ErrOTPConsumed
	}
	if c.Code != code {
		c.Attempts++
		return ErrOTPMismatch
	}
	c.Consumed = true
	return nil
}
