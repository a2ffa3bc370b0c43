package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Field("tenant", "identifier", "%q is already taken", "acme")
	assert.Equal(t, `validation_failed tenant.identifier: "acme" is already taken`, err.Error())
	assert.Equal(t, ValidationFailed, err.Kind)
	assert.Equal(t, "tenant", err.Entity)
	assert.Equal(t, "identifier", err.Field)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "tenant", "gone")))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))

	// Wrapping preserves the kind through fmt.Errorf chains.
	wrapped := fmt.Errorf("lookup: %w", New(Expired, "tenant", "lapsed"))
	assert.Equal(t, Expired, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, Expired))
	assert.False(t, IsKind(wrapped, Inactive))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Internal, "tenant", cause)
	assert.ErrorIs(t, err, cause)
}
