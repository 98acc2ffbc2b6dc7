package domain

// RawDocument represents opaque bytes handed to a normaliser.
type RawDocument struct {
	// URI is the original location (file path, upload filename, URL).
	URI string

	// MIMEType is the declared or detected content type (e.g. "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// IngestRequest is a single file submitted for ingestion.
type IngestRequest struct {
	// Content is the raw file bytes. Its hash identifies the document.
	Content []byte

	// Filename is the original name, used for type detection and as a title fallback.
	Filename string

	// MIMEType is optional; detected from Filename when empty.
	MIMEType string

	// Title overrides the title found by the normaliser.
	Title string

	// Kind overrides the document kind found by the normaliser.
	Kind string

	// Source records provenance. Defaults to Filename.
	Source string
}

// IngestResult is the per-file outcome of ingestion.
type IngestResult struct {
	// Filename echoes the request's filename.
	Filename string

	// ItemID is the document identifier, new or pre-existing.
	ItemID string

	// SHA256 is the content hash of the raw bytes.
	SHA256 string

	// Chunks is the number of chunks the document owns.
	Chunks int

	// Duplicate is true when the content had already been ingested.
	Duplicate bool

	// Err is set when this file failed. Siblings in a batch are unaffected.
	Err error
}
