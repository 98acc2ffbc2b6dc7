package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_TextOutput(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "ask", "What", "reduces", "costs?", "--format", "text", "-k", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "Solar power reduces costs [chunk c1].")
	assert.Contains(t, out, "Status: ok")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "  [1] c1 (0.91)")
	assert.Contains(t, out, "  [2] c2 (0.47)")
	assert.Equal(t, []string{"What reduces costs?"}, ts.answer.questions)
	assert.Equal(t, []int{3}, ts.answer.topKs)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	// A buffer is not a terminal, so auto selects JSON.
	out, err := executeCommand(t, "", "ask", "What reduces costs?")
	require.NoError(t, err)

	var res domain.AnswerResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.AnswerStatusOK, res.Status)
	assert.Equal(t, []string{"c1", "c2"}, res.ChunksUsed)
	assert.Len(t, res.Citations, 2)
}

func TestAskCmd_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.AnswerStatus
		wantErr bool
	}{
		{name: "no hits succeeds", status: domain.AnswerStatusNoHits},
		{name: "embedding error fails", status: domain.AnswerStatusEmbeddingError, wantErr: true},
		{name: "error fails", status: domain.AnswerStatusError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()
			ts.answer.result = domain.NewAnswerResult(tt.status, "[failed]", nil, time.Now())

			out, err := executeCommand(t, "", "ask", "q", "--format", "text")

			assert.Contains(t, out, "Status: "+tt.status.String())
			assert.NotContains(t, out, "Sources:")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "question failed: "+tt.status.String())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAskCmd_InvalidFormat(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "ask", "q", "--format", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "yaml"`)
}

func TestAskCmd_OpensApplicationWhenNotInjected(t *testing.T) {
	_, err := executeCommand(t, "", "ask", "q")

	assert.ErrorIs(t, err, errOpenDisabled)
}

func TestRunAsk_NotConfigured(t *testing.T) {
	err := runAsk(askCmd, []string{"q"})

	require.Error(t, err)
	assert.Equal(t, "answer service not configured", err.Error())
}
