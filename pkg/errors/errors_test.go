package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Creation(t *testing.T) {
	cause := errors.New("underlying error")

	err := NewValidationError("bad interval", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "bad interval", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
}

func TestDomainError_WithContext(t *testing.T) {
	err := NewProcessError("simulated crash", nil).
		WithContext("scenario", "crash").
		WithContext("heartbeats", 5)

	assert.Equal(t, "crash", err.Context["scenario"])
	assert.Equal(t, 5, err.Context["heartbeats"])
}

func TestDomainError_ErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		error    *DomainError
		expected string
	}{
		{
			name:     "error without cause",
			error:    NewProcessError("simulated crash", nil),
			expected: "process: simulated crash",
		},
		{
			name:     "error with cause",
			error:    NewIOError("failed to write PID file", errors.New("permission denied")),
			expected: "io: failed to write PID file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.error.Error())
		})
	}
}

func TestDomainError_TypeChecking(t *testing.T) {
	wrapped := fmt.Errorf("loading config: %w", NewValidationError("interval must be positive", nil))

	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsIOError(wrapped))
	assert.False(t, IsProcessError(nil))

	assert.True(t, IsProcessError(NewProcessError("x", nil)))
	assert.False(t, IsProcessError(NewCancelledError("x", context.Canceled)))
	assert.ErrorIs(t, NewCancelledError("x", context.Canceled), context.Canceled)
	assert.True(t, IsIOError(NewIOError("x", nil)))
}

func TestDomainError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := NewIOError("failed to read configuration file", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, &DomainError{Type: ErrorTypeIO}))
	assert.False(t, errors.Is(err, &DomainError{Type: ErrorTypeProcess}))
}
