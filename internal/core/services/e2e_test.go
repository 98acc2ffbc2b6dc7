package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestEndToEnd_IngestThenAsk(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	results := st.ingest.IngestBatch(ctx, []domain.IngestRequest{
		textRequest("solar.txt", "Solar power reduces costs."),
		textRequest("wind.txt", "Wind turbines generate electricity offshore."),
	})
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	solar := results[0]

	res := st.answer.Ask(ctx, "What reduces costs?", 5)

	require.Equal(t, domain.AnswerStatusOK, res.Status)
	assert.NotEmpty(t, res.Answer)
	require.Equal(t, []string{ChunkID(solar.SHA256, 0)}, res.ChunksUsed)
	require.Len(t, res.Citations, 1)
	assert.Greater(t, res.Citations[0].Score, 0.25)

	req := st.llm.lastRequest()
	assert.Contains(t, req.Prompt, "[chunk "+ChunkID(solar.SHA256, 0)+"] Solar power reduces costs.")
	assert.NotContains(t, req.Prompt, "Wind turbines")
}

func TestEndToEnd_EmptyIndex(t *testing.T) {
	st := newTestStack(t)

	res := st.answer.Ask(context.Background(), "anything", 0)

	assert.Equal(t, domain.AnswerStatusNoHits, res.Status)
	assert.Equal(t, NoHitsAnswer, res.Answer)
	assert.Empty(t, res.ChunksUsed)
	assert.Empty(t, res.Citations)
	assert.Empty(t, st.llm.requests)
}

func TestEndToEnd_ReingestKeepsAnswersStable(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)

	_, err := st.ingest.Ingest(ctx, textRequest("solar.txt", "Solar power reduces costs."))
	require.NoError(t, err)
	before := st.answer.Ask(ctx, "What reduces costs?", 5)

	_, err = st.ingest.Ingest(ctx, textRequest("solar-copy.txt", "Solar power reduces costs."))
	require.NoError(t, err)
	after := st.answer.Ask(ctx, "What reduces costs?", 5)

	assert.Equal(t, before.ChunksUsed, after.ChunksUsed)
	assert.Equal(t, before.Citations, after.Citations)
}
