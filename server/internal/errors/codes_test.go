package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := SchedulingConflict("the requested time overlaps an existing event")
	assert.Equal(t, "[SCHEDULING_CONFLICT] the requested time overlaps an existing event", err.Error())

	wrapped := Backend("listing events failed", fmt.Errorf("connection refused"))
	assert.Contains(t, wrapped.Error(), "BACKEND_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestIsCode(t *testing.T) {
	err := DateUnrecognized("gibberish")
	assert.True(t, IsCode(err, ErrCodeDateUnrecognized))
	assert.False(t, IsCode(err, ErrCodeAmbiguousLocalTime))

	// IsCode must see through fmt wrapping.
	wrapped := fmt.Errorf("resolving start time: %w", err)
	assert.True(t, IsCode(wrapped, ErrCodeDateUnrecognized))

	assert.False(t, IsCode(fmt.Errorf("plain"), ErrCodeBackend))
}

func TestGetCodeFromError(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, GetCodeFromError(NotFound("no such event"), ErrCodeBackend))
	assert.Equal(t, ErrCodeBackend, GetCodeFromError(fmt.Errorf("plain"), ErrCodeBackend))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, ErrCodeTimeout, "backend call timed out")
	assert.Equal(t, cause, err.Unwrap())
}
