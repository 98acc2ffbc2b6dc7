package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrExtractionFailure", ErrExtractionFailure},
		{"ErrEmbeddingFailure", ErrEmbeddingFailure},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrIndexFailure", ErrIndexFailure},
		{"ErrGenerationFailure", ErrGenerationFailure},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("embedding chunk 3: %w", ErrEmbeddingFailure)

	assert.ErrorIs(t, wrapped, ErrEmbeddingFailure)
	assert.NotErrorIs(t, wrapped, ErrIndexFailure)
}

func TestDimensionMismatchError(t *testing.T) {
	err := error(&DimensionMismatchError{Expected: 384, Got: 100})

	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, "dimension mismatch: expected 384, got 100", err.Error())

	wrapped := fmt.Errorf("upsert: %w", err)
	assert.ErrorIs(t, wrapped, ErrDimensionMismatch)

	var dm *DimensionMismatchError
	assert.True(t, errors.As(wrapped, &dm))
	assert.Equal(t, 384, dm.Expected)
	assert.Equal(t, 100, dm.Got)
}
