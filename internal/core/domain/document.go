package domain

import "time"

// Document is a source document identified by the hash of its raw bytes.
// It is created once per unique content hash and never mutated afterwards.
type Document struct {
	// ItemID is the unique identifier for the document.
	ItemID string

	// SHA256 is the hex-encoded SHA-256 of the raw uploaded bytes.
	SHA256 string

	// Title is the human-readable title.
	Title string

	// Source is where the bytes came from (file path, upload name, URL).
	Source string

	// Kind classifies the document (e.g. "markdown", "html", "text").
	Kind string

	// Content is the extracted text. It is only populated on the
	// ingestion path and is not persisted.
	Content string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Chunk is a bounded slice of a document's text, the unit of retrieval.
type Chunk struct {
	// ChunkID is stable across re-ingestion of identical content.
	ChunkID string

	// ItemID links to the parent Document.
	ItemID string

	// Index is the zero-based position in the document's chunk sequence.
	Index int

	// Text is the chunk content.
	Text string

	// Metadata holds named per-chunk attributes.
	Metadata ChunkMetadata
}

// ChunkMetadata carries the optional attributes copied onto a chunk.
type ChunkMetadata struct {
	Title     string
	Source    string
	Kind      string
	WordCount int
}

// Payload returns the fixed record stored alongside the chunk's vector.
func (c Chunk) Payload() ChunkPayload {
	return ChunkPayload{
		ItemID: c.ItemID,
		Index:  c.Index,
		Text:   c.Text,
		Title:  c.Metadata.Title,
		Source: c.Metadata.Source,
	}
}
