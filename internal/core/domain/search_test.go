package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnswerResult_EmptyListsAreNonNil(t *testing.T) {
	res := NewAnswerResult(AnswerStatusNoHits, "nothing found", nil, time.Now())

	require.NotNil(t, res.ChunksUsed)
	require.NotNil(t, res.Citations)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chunks_used":[]`)
	assert.Contains(t, string(data), `"citations":[]`)
	assert.Contains(t, string(data), `"status":"no_hits"`)
}

func TestNewAnswerResult_ChunksUsedFollowCitations(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	citations := []Citation{{ChunkID: "a", Score: 0.9}, {ChunkID: "b", Score: 0.5}}

	res := NewAnswerResult(AnswerStatusOK, "answer", citations, now)

	assert.Equal(t, []string{"a", "b"}, res.ChunksUsed)
	assert.Equal(t, citations, res.Citations)
	assert.Equal(t, now, res.Timestamp)

	citations[0].ChunkID = "mutated"
	assert.Equal(t, "a", res.Citations[0].ChunkID)
}

func TestChunk_Payload(t *testing.T) {
	c := Chunk{
		ChunkID: "c1",
		ItemID:  "doc-1",
		Index:   2,
		Text:    "solar",
		Metadata: ChunkMetadata{
			Title:  "Energy",
			Source: "energy.md",
		},
	}

	assert.Equal(t, ChunkPayload{
		ItemID: "doc-1",
		Index:  2,
		Text:   "solar",
		Title:  "Energy",
		Source: "energy.md",
	}, c.Payload())
}
