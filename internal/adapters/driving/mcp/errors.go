// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-rag.
// It lets AI assistants ask questions against the indexed documents, pull raw
// passages, and add new text.
package mcp

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("mcp: answer service is required")

	// ErrToolUnavailable is returned by tools whose backing service is not configured.
	ErrToolUnavailable = errors.New("mcp: tool unavailable")
)
