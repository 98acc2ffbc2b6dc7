// Package httpapi exposes ingestion, question answering and document
// administration over HTTP with JSON payloads.
package httpapi

import "errors"

var (
	// ErrMissingIngestService is returned when the ingest service is not provided.
	ErrMissingIngestService = errors.New("httpapi: ingest service is required")

	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("httpapi: answer service is required")
)
