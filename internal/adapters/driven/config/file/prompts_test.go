package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".sercha-rag", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptPersona)
	require.NoError(t, err)

	for _, f := range []string{"persona.txt", "answer.txt"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsDefaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	persona, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPersona, persona)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultAnswerTemplate, answer)
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.txt"), []byte("  Be brief.\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	persona, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", persona)
}

func TestPromptStore_Load_AnswerTemplateNeedsPlaceholders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte("Question: %s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultAnswerTemplate, answer)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent")
	assert.Error(t, err)
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPersona, first)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.txt"), []byte("Updated persona"), 0600))

	cached, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, driven.DefaultPersona, cached)

	store.Reload()

	updated, err := store.Load(driven.PromptPersona)
	require.NoError(t, err)
	assert.Equal(t, "Updated persona", updated)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.Load(driven.PromptAnswer)
			assert.NoError(t, err)
			assert.Equal(t, driven.DefaultAnswerTemplate, p)
		}()
	}
	wg.Wait()
}
