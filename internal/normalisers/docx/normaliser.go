// Package docx provides a Normaliser for Office Open XML word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Kind is the document kind reported for DOCX.
const Kind = "word"

// maxPartBytes caps how much of one archive member is read.
const maxPartBytes = 32 << 20

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific, preferred over remote extraction
}

// Normalise reads paragraph text from word/document.xml.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %w", domain.ErrExtractionFailure, err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailure, err)
	}

	text := parseDocumentXML(body)
	if text == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrExtractionFailure, raw.URI)
	}

	return &driven.NormaliseResult{
		Title: extractTitle(reader, raw.URI),
		Kind:  Kind,
		Text:  text,
	}, nil
}

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxPartBytes))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins the runs of each paragraph, one paragraph per line.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	lines := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, r := range para.Runs {
			for _, t := range r.Text {
				line.WriteString(t.Content)
			}
		}
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads docProps/core.xml, falling back to the file name.
func extractTitle(reader *zip.Reader, uri string) string {
	if content, err := readPart(reader, "docProps/core.xml"); err == nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			if title := strings.TrimSpace(core.Title); title != "" {
				return title
			}
		}
	}
	return plaintext.TitleFromURI(uri)
}
