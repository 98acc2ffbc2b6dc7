package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Kind is the document kind reported for plain text.
const Kind = "text"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-java",
		"text/x-c",
		"text/x-c++",
		"text/x-ruby",
		"text/x-shellscript",
		"text/x-sql",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/javascript",
		"text/typescript",
		"text/css",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the bytes as text. Input that is not valid UTF-8 or
// contains NUL bytes is treated as binary and rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, utf8BOM)
	if !IsText(content) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrExtractionFailure, raw.URI)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrExtractionFailure, raw.URI)
	}

	return &driven.NormaliseResult{
		Title: TitleFromURI(raw.URI),
		Kind:  Kind,
		Text:  text,
	}, nil
}

// IsText reports whether b looks like UTF-8 text.
func IsText(b []byte) bool {
	return utf8.Valid(b) && bytes.IndexByte(b, 0) < 0
}

// TitleFromURI derives a human-readable title from a file name.
func TitleFromURI(uri string) string {
	if uri == "" {
		return ""
	}

	filename := filepath.Base(uri)

	// Remove common extensions for cleaner title
	if ext := filepath.Ext(filename); ext != "" && ext != filename {
		filename = strings.TrimSuffix(filename, ext)
	}

	// Replace underscores and dashes with spaces
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return strings.TrimSpace(filename)
}
