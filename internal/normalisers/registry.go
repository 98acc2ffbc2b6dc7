package normalisers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// textFallback is the MIME type tried for UTF-8 input of an unregistered type.
const textFallback = "text/plain"

// Registry dispatches documents to normalisers by MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// Register adds a normaliser for each of its MIME types, keeping candidates
// sorted by descending priority.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range n.SupportedMIMETypes() {
		t = BaseMIMEType(t)
		list := append(r.byMIME[t], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[t] = list
	}
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for t := range r.byMIME {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Supports reports whether a file name maps to a registered MIME type.
func (r *Registry) Supports(filename string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byMIME[DetectMIMEType(filename)]
	return ok
}

// Normalise tries candidates for the document's MIME type in priority order.
// The MIME type is detected from the URI when not declared. Unregistered
// types fall back to the plain text normalisers when the bytes are UTF-8 text.
// The returned error wraps domain.ErrExtractionFailure.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := BaseMIMEType(raw.MIMEType)
	if mimeType == "" {
		mimeType = DetectMIMEType(raw.URI)
	}
	doc := *raw
	doc.MIMEType = mimeType

	r.mu.RLock()
	candidates := append([]driven.Normaliser(nil), r.byMIME[mimeType]...)
	if len(candidates) == 0 && plaintext.IsText(raw.Content) {
		candidates = append(candidates, r.byMIME[textFallback]...)
	}
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %w: %s (%s)",
			domain.ErrExtractionFailure, domain.ErrUnsupportedType, raw.URI, mimeType)
	}

	var errs []error
	for _, n := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := n.Normalise(ctx, &doc)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if !errors.Is(err, domain.ErrExtractionFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrExtractionFailure, err)
	}
	return nil, err
}
