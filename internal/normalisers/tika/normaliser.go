// Package tika provides a Normaliser that delegates extraction of binary
// office formats and PDFs to an Apache Tika server.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// maxTextBytes caps the extracted text read from the server.
	maxTextBytes = 64 << 20
)

// kinds maps handled MIME types to document kinds.
var kinds = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "word",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "word",
	"application/vnd.oasis.opendocument.text":                                   "word",
	"application/rtf":                                                           "rtf",
	"application/vnd.ms-powerpoint":                                             "slides",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "slides",
	"application/vnd.ms-excel":                                                  "spreadsheet",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "spreadsheet",
	"application/epub+zip":                                                      "ebook",
	"message/rfc822":                                                            "email",
	"application/octet-stream":                                                  "binary",
}

// Config holds configuration for the Tika normaliser.
type Config struct {
	// URL is the Tika server base URL, e.g. http://localhost:9998 (required).
	URL string

	// Timeout bounds one extraction (default: 60s).
	Timeout time.Duration
}

// Normaliser extracts text by PUTting the raw bytes to /tika.
type Normaliser struct {
	client *http.Client
	url    string
}

// New creates a Tika normaliser.
func New(cfg Config) (*Normaliser, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: tika URL required", domain.ErrInvalidInput)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Normaliser{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    strings.TrimSuffix(cfg.URL, "/") + "/tika",
	}, nil
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	types := make([]string, 0, len(kinds))
	for t := range kinds {
		types = append(types, t)
	}
	return types
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 30 // Remote extraction service
}

// Normalise sends the document to Tika and returns the plain text response.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, n.url, bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("tika: create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if raw.MIMEType != "" {
		req.Header.Set("Content-Type", raw.MIMEType)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tika: %w", domain.ErrExtractionFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: tika returned status %d: %s",
			domain.ErrExtractionFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: tika: read response: %w", domain.ErrExtractionFailure, err)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil, fmt.Errorf("%w: tika found no text in %s", domain.ErrExtractionFailure, raw.URI)
	}

	kind := kinds[raw.MIMEType]
	if kind == "" {
		kind = "document"
	}

	return &driven.NormaliseResult{
		Title: plaintext.TitleFromURI(raw.URI),
		Kind:  kind,
		Text:  text,
	}, nil
}
