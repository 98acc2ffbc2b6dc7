// Package vector holds the scoring helpers shared by the VectorIndex adapters
// that search in-process (memory and sqlite). Remote backends such as Qdrant
// score on the server.
package vector

import (
	"math"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Zero vectors and vectors of different length score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK scores every record against query and returns the best k hits,
// ordered by descending score. Ties are broken by chunk ID so results are stable.
func TopK(query []float32, records []domain.VectorRecord, k int) []domain.Hit {
	if k <= 0 || len(records) == 0 {
		return []domain.Hit{}
	}

	hits := make([]domain.Hit, 0, len(records))
	for _, r := range records {
		hits = append(hits, domain.Hit{
			ChunkID: r.ChunkID,
			Score:   Cosine(query, r.Vector),
			Payload: r.Payload,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].ChunkID < hits[j].ChunkID
		}
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// CheckDimensions returns a DimensionMismatchError for the first record whose
// vector length differs from dim.
func CheckDimensions(dim int, records []domain.VectorRecord) error {
	for _, r := range records {
		if len(r.Vector) != dim {
			return &domain.DimensionMismatchError{Expected: dim, Got: len(r.Vector)}
		}
	}
	return nil
}
