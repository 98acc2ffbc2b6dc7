package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question to answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of passages to retrieve (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string           `json:"answer"`
	Status     string           `json:"status"`
	ChunksUsed []string         `json:"chunks_used"`
	Citations  []CitationOutput `json:"citations"`
	Timestamp  string           `json:"timestamp"`
}

// CitationOutput references a supporting chunk.
type CitationOutput struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string  `json:"question" jsonschema:"the text to find similar passages for"`
	TopK     int     `json:"top_k,omitempty" jsonschema:"maximum number of passages (default from settings)"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"drop passages scoring below this cosine similarity"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Hits  []HitOutput `json:"hits"`
	Count int         `json:"count"`
}

// HitOutput represents a single retrieved passage.
type HitOutput struct {
	ChunkID string  `json:"chunk_id"`
	ItemID  string  `json:"item_id"`
	Index   int     `json:"index"`
	Title   string  `json:"title,omitempty"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Filename string `json:"filename" jsonschema:"name used for type detection and as the default title, e.g. notes.md"`
	Text     string `json:"text" jsonschema:"the document content"`
	Title    string `json:"title,omitempty" jsonschema:"optional title override"`
	Source   string `json:"source,omitempty" jsonschema:"optional provenance, e.g. a URL"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	ItemID    string `json:"item_id"`
	SHA256    string `json:"sha256"`
	Chunks    int    `json:"chunks"`
	Duplicate bool   `json:"duplicate"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents, with chunk citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed passages most similar to a question, without generating an answer",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Add a text document to the index. Identical content is only indexed once",
	}, s.handleIngestText)
}

// handleAsk handles the ask tool invocation. Pipeline failures are reported
// through the status field, never as tool errors.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	res := s.ports.Answer.Ask(ctx, input.Question, input.TopK)

	output := AskOutput{
		Answer:     res.Answer,
		Status:     res.Status.String(),
		ChunksUsed: res.ChunksUsed,
		Citations:  make([]CitationOutput, len(res.Citations)),
		Timestamp:  res.Timestamp.Format(time.RFC3339),
	}
	for i, c := range res.Citations {
		output.Citations[i] = CitationOutput{ChunkID: c.ChunkID, Score: c.Score}
	}

	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if s.ports.Retrieval == nil {
		return nil, RetrieveOutput{}, fmt.Errorf("%w: retrieval service not configured", ErrToolUnavailable)
	}

	hits, err := s.ports.Retrieval.Retrieve(ctx, input.Question, input.TopK, input.MinScore)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Hits:  make([]HitOutput, len(hits)),
		Count: len(hits),
	}
	for i := range hits {
		output.Hits[i] = hitOutput(hits[i])
	}

	return nil, output, nil
}

// handleIngestText handles the ingest_text tool invocation.
func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestTextOutput{}, fmt.Errorf("%w: ingest service not configured", ErrToolUnavailable)
	}

	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		filename = "untitled.txt"
	}

	res, err := s.ports.Ingest.Ingest(ctx, domain.IngestRequest{
		Content:  []byte(input.Text),
		Filename: filename,
		Title:    input.Title,
		Source:   input.Source,
	})
	if err != nil {
		return nil, IngestTextOutput{}, err
	}

	return nil, IngestTextOutput{
		ItemID:    res.ItemID,
		SHA256:    res.SHA256,
		Chunks:    res.Chunks,
		Duplicate: res.Duplicate,
	}, nil
}

func hitOutput(h domain.Hit) HitOutput {
	return HitOutput{
		ChunkID: h.ChunkID,
		ItemID:  h.Payload.ItemID,
		Index:   h.Payload.Index,
		Title:   h.Payload.Title,
		Source:  h.Payload.Source,
		Score:   h.Score,
		Text:    h.Payload.Text,
	}
}
