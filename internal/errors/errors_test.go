package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("dataset contains no sprints")

	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.Contains(t, err.Error(), "dataset contains no sprints")
	assert.False(t, err.Timestamp.IsZero())
}

func TestNewValidationErrorWithDetails(t *testing.T) {
	err := NewValidationError("sprint sequence numbers must be strictly increasing",
		"sprint q3-2 (number 2) follows number 2")

	assert.Equal(t, CategoryValidation, err.Category)
	assert.NotEmpty(t, err.ErrBuilder.Details.Errors)
}

func TestNewConfigurationError(t *testing.T) {
	cause := stderrors.New("weights sum to 0.9")
	err := NewConfigurationError("health weight table is invalid", cause)

	assert.Equal(t, CategoryConfiguration, err.Category)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Contains(t, err.Error(), "CONFIGURATION_ERROR")
}

func TestNewInsufficientHistoryError(t *testing.T) {
	err := NewInsufficientHistoryError("monte carlo forecast", 3, 1)

	assert.Equal(t, CategoryInsufficientHistory, err.Category)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Contains(t, err.Error(), "requires at least 3 historical points, got 1")
	assert.NotEmpty(t, err.ErrBuilder.Details.Errors)
}

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		insufficient  bool
		configuration bool
	}{
		{
			name:         "insufficient history",
			err:          NewInsufficientHistoryError("capacity forecast", 4, 2),
			insufficient: true,
		},
		{
			name:          "configuration",
			err:           NewConfigurationError("unknown strategic category", nil),
			configuration: true,
		},
		{
			name: "validation matches neither",
			err:  NewValidationError("bad input"),
		},
		{
			name:         "wrapped errors still match",
			err:          fmt.Errorf("analyze: %w", NewInsufficientHistoryError("monte carlo forecast", 3, 2)),
			insufficient: true,
		},
		{
			name: "plain errors match neither",
			err:  stderrors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.insufficient, IsInsufficientHistory(tt.err))
			assert.Equal(t, tt.configuration, IsConfiguration(tt.err))
		})
	}
}

func TestToAppError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToAppError(nil))
	})

	t.Run("app errors pass through unchanged", func(t *testing.T) {
		original := NewInsufficientHistoryError("monte carlo forecast", 3, 1)
		assert.Same(t, original, ToAppError(original))
	})

	t.Run("app errors survive wrapping", func(t *testing.T) {
		original := NewConfigurationError("bad weights", nil)
		wrapped := fmt.Errorf("engine init: %w", original)
		assert.Same(t, original, ToAppError(wrapped))
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		got := ToAppError(stderrors.New("boom"))
		require.NotNil(t, got)
		assert.Equal(t, CategoryInternal, got.Category)
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	})
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "context"))

	inner := NewValidationError("bad sprint")
	wrapped := WrapError(inner, "analyzing dataset %q", "q3")
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), `analyzing dataset "q3"`)
	assert.True(t, stderrors.Is(wrapped, inner))
}
