package domain

import "time"

// ChunkPayload is the fixed record stored with each vector and returned on search.
type ChunkPayload struct {
	ItemID string
	Index  int
	Text   string
	Title  string
	Source string
}

// VectorRecord is one chunk embedding to upsert into the index.
type VectorRecord struct {
	// ID is the stable vector identifier (same content, same ID).
	ID string

	// ChunkID links the vector to its chunk.
	ChunkID string

	// Vector is the embedding. Its length must equal the collection dimension.
	Vector []float32

	// Payload is stored alongside the vector.
	Payload ChunkPayload
}

// Hit is an ephemeral similarity search result. It is never persisted.
type Hit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the cosine similarity with the query vector.
	Score float64

	// Payload is the record stored with the vector.
	Payload ChunkPayload
}

// Citation references a chunk that supported an answer.
type Citation struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// AnswerStatus is the machine-readable outcome of a question.
type AnswerStatus string

// Terminal answer statuses.
const (
	AnswerStatusOK             AnswerStatus = "ok"
	AnswerStatusNoHits         AnswerStatus = "no_hits"
	AnswerStatusEmbeddingError AnswerStatus = "embedding_error"
	AnswerStatusError          AnswerStatus = "error"
)

// String returns the string representation.
func (s AnswerStatus) String() string {
	return string(s)
}

// AnswerResult is the structured response to a question.
// It is built once per query and never mutated afterwards.
type AnswerResult struct {
	Answer     string       `json:"answer"`
	Status     AnswerStatus `json:"status"`
	ChunksUsed []string     `json:"chunks_used"`
	Citations  []Citation   `json:"citations"`
	Timestamp  time.Time    `json:"timestamp"`
}

// NewAnswerResult builds an AnswerResult with non-nil lists.
// ChunksUsed mirrors the citation order.
func NewAnswerResult(status AnswerStatus, answer string, citations []Citation, now time.Time) AnswerResult {
	res := AnswerResult{
		Answer:     answer,
		Status:     status,
		ChunksUsed: make([]string, 0, len(citations)),
		Citations:  make([]Citation, 0, len(citations)),
		Timestamp:  now,
	}
	for _, c := range citations {
		res.ChunksUsed = append(res.ChunksUsed, c.ChunkID)
		res.Citations = append(res.Citations, c)
	}
	return res
}
