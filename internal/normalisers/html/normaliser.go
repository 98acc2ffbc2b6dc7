package html

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Kind is the document kind reported for HTML.
const Kind = "html"

const (
	// removed are elements whose text is never content.
	removed = "head, script, style, noscript, svg, template, iframe, nav"

	// blocks end a line of text.
	blocks = "p, div, section, article, header, footer, aside, main, " +
		"h1, h2, h3, h4, h5, h6, li, tr, blockquote, pre, table, ul, ol, dl, dt, dd, figcaption"
)

var multiSpaces = regexp.MustCompile(`[ \t\f\v\r\x{00a0}]+`)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise parses the document and returns the readable body text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", domain.ErrExtractionFailure, err)
	}

	title := extractTitle(doc, raw.URI)
	text := extractText(doc)
	if text == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrExtractionFailure, raw.URI)
	}

	return &driven.NormaliseResult{
		Title: title,
		Kind:  Kind,
		Text:  text,
	}, nil
}

// Text parses an HTML fragment or document and returns its readable text.
func Text(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return extractText(doc), nil
}

// extractTitle prefers <title>, then the first <h1>, then the file name.
func extractTitle(doc *goquery.Document, uri string) string {
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := collapse(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return plaintext.TitleFromURI(uri)
}

// extractText returns one line per block element with inline whitespace collapsed.
func extractText(doc *goquery.Document) string {
	doc.Find(removed).Remove()
	doc.Find("br, hr").ReplaceWithHtml("\n")
	doc.Find("td, th").AppendHtml(" ")
	doc.Find(blocks).AppendHtml("\n")

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var lines []string
	for _, line := range strings.Split(root.Text(), "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func collapse(s string) string {
	return strings.TrimSpace(multiSpaces.ReplaceAllString(s, " "))
}
