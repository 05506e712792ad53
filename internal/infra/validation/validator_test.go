package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedMessage struct {
	PropertyID string `validate:"required"`
	Guests     int    `validate:"gte=1"`
	Email      string `validate:"omitempty,email"`
}

func TestValidatePassesValidStruct(t *testing.T) {
	v := NewStructValidator()
	err := v.Validate(context.Background(), taggedMessage{PropertyID: "prop-1", Guests: 2})
	require.NoError(t, err)
}

func TestValidateReportsFailedFields(t *testing.T) {
	v := NewStructValidator()
	err := v.Validate(context.Background(), taggedMessage{Guests: 0, Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidMessage)
	assert.Contains(t, err.Error(), "PropertyID (required)")
	assert.Contains(t, err.Error(), "Guests (gte)")
	assert.Contains(t, err.Error(), "Email (email)")
}

func TestValidateToleratesNonStructMessages(t *testing.T) {
	v := NewStructValidator()
	assert.NoError(t, v.Validate(context.Background(), nil))
	assert.NoError(t, v.Validate(context.Background(), "plain string"))
	assert.NoError(t, v.Validate(context.Background(), 42))
}

func TestValidateUntaggedStruct(t *testing.T) {
	type bare struct{ Anything string }
	v := NewStructValidator()
	assert.NoError(t, v.Validate(context.Background(), bare{}))
}
