package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AssembleContext renders hits as "[chunk <id>] <text>" blocks separated by
// a blank line, in hit order. Hits without a chunk ID or text are dropped
// from both the context and the citations, so the citations mirror the
// rendered blocks one to one.
func AssembleContext(hits []domain.Hit) (string, []domain.Citation) {
	blocks := make([]string, 0, len(hits))
	citations := make([]domain.Citation, 0, len(hits))

	for _, h := range hits {
		text := strings.TrimSpace(h.Payload.Text)
		if h.ChunkID == "" || text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[chunk %s] %s", h.ChunkID, text))
		citations = append(citations, domain.Citation{ChunkID: h.ChunkID, Score: h.Score})
	}

	return strings.Join(blocks, "\n\n"), citations
}
