package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Normaliser extracts plain text from raw bytes.
// Each normaliser handles specific MIME types (e.g., HTML, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Remote extraction services should return 10-49.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts text from a raw document.
	// Returns domain.ErrExtractionFailure when the input has no usable text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Title is the title found in the content, or derived from the URI.
	Title string

	// Kind classifies the format (e.g. "markdown").
	Kind string

	// Text is the extracted plain text.
	Text string
}
