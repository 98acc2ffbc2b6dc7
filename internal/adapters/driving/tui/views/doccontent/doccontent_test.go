package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

type contentService struct {
	driving.DocumentService
	content string
	err     error
	asked   string
}

func (c *contentService) GetContent(_ context.Context, itemID string) (string, error) {
	c.asked = itemID
	return c.content, c.err
}

func longContent(lines int) string {
	parts := make([]string, lines)
	for i := range parts {
		parts[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(parts, "\n")
}

func load(t *testing.T, v *View, doc *domain.Document) *View {
	t.Helper()
	cmd := v.SetDocument(doc)
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_LoadContent(t *testing.T) {
	svc := &contentService{content: "Solar power reduces costs.\nPanels last decades."}
	v := NewView(nil, svc)
	v.SetDimensions(80, 24)

	v = load(t, v, &domain.Document{ItemID: "doc-1", Title: "solar"})

	require.NoError(t, v.Err())
	assert.Equal(t, "doc-1", svc.asked)
	assert.Equal(t, "doc-1", v.Document().ItemID)
	assert.Equal(t, svc.content, v.Content())

	out := v.View()
	assert.Contains(t, out, "solar")
	assert.Contains(t, out, "Panels last decades.")
}

func TestView_Loading(t *testing.T) {
	v := NewView(nil, &contentService{})

	v.SetDocument(&domain.Document{ItemID: "doc-1"})

	out := v.View()
	assert.Contains(t, out, "doc-1", "untitled documents show their id")
	assert.Contains(t, out, "Loading content...")
}

func TestView_Errors(t *testing.T) {
	t.Run("service error", func(t *testing.T) {
		v := load(t, NewView(nil, &contentService{err: domain.ErrNotFound}), &domain.Document{ItemID: "x"})

		assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
		assert.Contains(t, v.View(), "Error:")
	})

	t.Run("no service", func(t *testing.T) {
		v := load(t, NewView(nil, nil), &domain.Document{ItemID: "x"})

		assert.ErrorIs(t, v.Err(), ErrNoDocumentService)
	})

	t.Run("error message", func(t *testing.T) {
		v := NewView(nil, nil)
		v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

		assert.EqualError(t, v.Err(), "boom")
	})
}

func TestView_EmptyContent(t *testing.T) {
	v := load(t, NewView(nil, &contentService{content: "  "}), &domain.Document{ItemID: "x"})

	assert.Contains(t, v.View(), "(No content)")
}

func TestView_Scroll(t *testing.T) {
	v := NewView(nil, &contentService{content: longContent(100)})
	v.SetDimensions(80, 20)
	v = load(t, v, &domain.Document{ItemID: "doc-1"})
	require.True(t, v.AtTop())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.False(t, v.AtTop())
	assert.Contains(t, v.View(), "line 100")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.True(t, v.AtTop())
	assert.Contains(t, v.View(), "line 1")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.False(t, v.AtTop())
}

func TestView_EscReturnsToDocuments(t *testing.T) {
	v := NewView(nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewDocuments, msg.View)
}
