package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "config.yaml", file)
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", BusyError("build already running").Build())

		require.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryBusy))
		assert.Equal(t, CategoryBusy, GetCategory(err))
		assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	})

	t.Run("Sentinel comparison", func(t *testing.T) {
		sentinel := StorageError("session write failed").Build()
		err := WrapError(errors.New("disk full"), CategoryStorage, "session write failed").Build()

		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := NetworkError("unreachable").Build()
		derived := base.WithContext("transport", "nats")

		_, ok := base.Context().Get("transport")
		assert.False(t, ok)
		v, _ := derived.Context().GetString("transport")
		assert.Equal(t, "nats", v)
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := WrapError(originalErr, CategoryNetwork, "library builder unreachable").
		Warning().
		Retryable().
		WithContext("endpoint", "http://builder:8080").
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
	assert.True(t, err.CanRetry())
	assert.ErrorIs(t, err, originalErr)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ClassifiedError
		category ErrorCategory
		retry    RetryStrategy
		canRetry bool
	}{
		{"config", ConfigError("x").Build(), CategoryConfig, RetryNever, false},
		{"validation", ValidationError("x").Build(), CategoryValidation, RetryUserAction, false},
		{"auth", AuthError("x").Build(), CategoryAuth, RetryUserAction, false},
		{"busy", BusyError("x").Build(), CategoryBusy, RetryImmediate, true},
		{"network", NetworkError("x").Build(), CategoryNetwork, RetryBackoff, true},
		{"build", BuildError("x").Build(), CategoryBuild, RetryUserAction, false},
		{"storage", StorageError("x").Build(), CategoryStorage, RetryNever, false},
		{"runtime", RuntimeError("x").Build(), CategoryRuntime, RetryNever, false},
		{"internal", InternalError("x").Build(), CategoryInternal, RetryNever, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.retry, tt.err.RetryStrategy())
			assert.Equal(t, tt.canRetry, tt.err.CanRetry())
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))

	err := WrapError(errors.New("EOF"), CategoryNetwork, "library builder unreachable").Build()
	assert.Equal(t, "library builder unreachable", UserMessage(fmt.Errorf("build: %w", err)))
}
