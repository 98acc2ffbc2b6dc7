package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "documents", documentCmd.Use)
	assert.ElementsMatch(t, []string{"document", "docs"}, documentCmd.Aliases)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "show", "content", "delete"}, commandNames)
}

// Document List Tests

func TestDocumentListCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "documents", "list", "extra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestDocumentListCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "documents", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:")
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Title: Solar Report")
	assert.Contains(t, out, "Source: solar.md")
	assert.Contains(t, out, "Title: Wind Notes")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.docs = nil

	out, err := executeCommand(t, "", "docs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents ingested.")
}

func TestDocumentListCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "documents", "list", "--format", "json")
	require.NoError(t, err)

	var docs []documentOutput
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ItemID)
	assert.Equal(t, "aaa", docs[0].SHA256)
	assert.Equal(t, "markdown", docs[0].Kind)
	assert.Equal(t, "2024-03-01T12:00:00Z", docs[0].CreatedAt)
}

func TestDocumentListCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.err = errors.New("database locked")

	_, err := executeCommand(t, "", "documents", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list documents: database locked")
}

// Document Show Tests

func TestDocumentShowCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "documents", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentShowCmd_Executes(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "documents", "show", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "Title:    Solar Report")
	assert.Contains(t, out, "Kind:     markdown")
	assert.Contains(t, out, "SHA-256:  aaa")
	assert.Contains(t, out, "Chunks:   3")
	assert.Contains(t, out, "Words:    120")
	assert.Contains(t, out, "Created:  2024-03-01 12:00:00")
}

func TestDocumentShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "documents", "show", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Document Content Tests

func TestDocumentContentCmd_Executes(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "documents", "content", "doc-2")

	require.NoError(t, err)
	assert.Contains(t, out, "Content of Wind Notes")
}

func TestDocumentContentCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "documents", "content", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get content")
}

// Document Delete Tests

func TestDocumentDeleteCmd_Executes(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "documents", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document: doc-1")
	assert.Equal(t, []string{"doc-1"}, ts.documents.deleted)
}

func TestDocumentDeleteCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "documents", "delete", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, ts.documents.deleted)
}

func TestDocumentCommands_NotConfigured(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{name: "list", run: func() error { return runDocumentList(documentListCmd, nil) }},
		{name: "show", run: func() error { return runDocumentShow(documentShowCmd, []string{"x"}) }},
		{name: "content", run: func() error { return runDocumentContent(documentContentCmd, []string{"x"}) }},
		{name: "delete", run: func() error { return runDocumentDelete(documentDeleteCmd, []string{"x"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.Equal(t, "document service not configured", err.Error())
		})
	}
}
