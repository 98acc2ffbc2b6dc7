package httpapi

import (
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Ingest handles POST /ingest.
	Ingest driving.IngestService

	// Answer handles POST /ask.
	Answer driving.AnswerService

	// Document backs the /documents and /admin routes. Optional.
	Document driving.DocumentService

	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
