package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer runs the question pipeline.
	Answer driving.AnswerService

	// Retrieval returns scored chunks without generation.
	Retrieval driving.RetrievalService

	// Ingest adds documents.
	Ingest driving.IngestService

	// Document lists and reads ingested documents.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Retrieval, Ingest and Document tools degrade to errors when unset.
	return nil
}
