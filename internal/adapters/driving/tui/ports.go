// Package tui provides an interactive terminal user interface for sercha-rag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Answer runs the question pipeline.
	Answer driving.AnswerService

	// Document lists, reads and deletes documents. Optional.
	Document driving.DocumentService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, document driving.DocumentService) *Ports {
	return &Ports{
		Answer:   answer,
		Document: document,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
