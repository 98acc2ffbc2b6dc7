package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Document stores return it when an insert loses a content hash race.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrExtractionFailure indicates no usable text could be extracted from a file.
	// Recovered per file: the file is skipped and the batch continues.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrEmbeddingFailure indicates the embedding service failed or returned
	// malformed output. Terminal for the single query or file.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// collection dimension. Vectors are never padded or truncated.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexFailure indicates the vector index could not serve an upsert or search.
	ErrIndexFailure = errors.New("index failure")

	// ErrGenerationFailure indicates the generator failed or timed out.
	ErrGenerationFailure = errors.New("generation failure")

	// Availability Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// DimensionMismatchError carries the expected and actual vector lengths.
// It matches ErrDimensionMismatch with errors.Is.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrDimensionMismatch, e.Expected, e.Got)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
