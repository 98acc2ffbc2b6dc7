package normalisers

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/docx"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/eml"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/html"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/tika"
)

// RegisterDefaults registers the built-in normalisers. The Tika normaliser is
// added only when a server URL is configured.
func RegisterDefaults(r *Registry, settings domain.ExtractionSettings) error {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(eml.New())

	if settings.TikaURL != "" {
		n, err := tika.New(tika.Config{URL: settings.TikaURL})
		if err != nil {
			return fmt.Errorf("tika normaliser: %w", err)
		}
		r.Register(n)
	}
	return nil
}
