// Package eml provides a Normaliser for RFC 822 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/html"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Kind is the document kind reported for email.
const Kind = "email"

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific, preferred over remote extraction
}

// Normalise renders the main headers followed by the body. Plain text parts
// are preferred over HTML parts.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse email: %w", domain.ErrExtractionFailure, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	body, err := extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailure, err)
	}
	body = strings.TrimSpace(body)
	if body == "" && subject == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrExtractionFailure, raw.URI)
	}

	var content strings.Builder
	for _, h := range []struct{ name, value string }{
		{"From", decodeHeader(msg.Header.Get("From"))},
		{"To", decodeHeader(msg.Header.Get("To"))},
		{"Date", msg.Header.Get("Date")},
		{"Subject", subject},
	} {
		if h.value != "" {
			fmt.Fprintf(&content, "%s: %s\n", h.name, h.value)
		}
	}
	content.WriteString("\n")
	content.WriteString(body)

	title := subject
	if title == "" {
		title = plaintext.TitleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Title: title,
		Kind:  Kind,
		Text:  strings.TrimSpace(content.String()),
	}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// extractBody returns the text of a single part or a multipart tree.
func extractBody(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	if strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		r = base64.NewDecoder(base64.StdEncoding, r)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipartBody(r, params["boundary"])
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	switch mediaType {
	case "text/html":
		return html.Text(bytes.NewReader(body))
	case "text/plain":
		return string(body), nil
	default:
		return "", nil
	}
}

// extractMultipartBody collects text parts, falling back to HTML parts.
func extractMultipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}

		partType := part.Header.Get("Content-Type")
		mediaType, _, parseErr := mime.ParseMediaType(partType)
		if parseErr != nil {
			mediaType = "text/plain"
		}

		text, err := extractBody(partType, part.Header.Get("Content-Transfer-Encoding"), part)
		part.Close()
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}

		if mediaType == "text/html" {
			htmlParts = append(htmlParts, text)
		} else {
			textParts = append(textParts, text)
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}
