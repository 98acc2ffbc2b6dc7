// Package whitespace provides a processor that normalises whitespace in chunk text.
package whitespace

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Processor collapses runs of whitespace in each chunk to single spaces and
// drops chunks left empty. Indices are renumbered to stay contiguous.
type Processor struct{}

// New creates a whitespace processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "whitespace"
}

// Process normalises the text of existing chunks.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := chunks[:0]
	for _, c := range chunks {
		c.Text = strings.Join(strings.Fields(c.Text), " ")
		if c.Text == "" {
			continue
		}
		c.Index = len(out)
		out = append(out, c)
	}
	return out, nil
}
