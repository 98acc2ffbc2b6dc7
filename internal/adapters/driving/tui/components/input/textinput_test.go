package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	q := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, q)
	assert.Empty(t, q.Value())
	assert.True(t, q.Focused())
	assert.NotNil(t, q.Init())
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	q := NewQuestionInput(nil)

	require.NotNil(t, q)
	assert.NotNil(t, q.styles)
}

func TestQuestionInput_Typing(t *testing.T) {
	q := NewQuestionInput(nil)

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why")})

	assert.Equal(t, "why", q.Value())
}

func TestQuestionInput_Question(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetValue("  What reduces costs?  ")

	assert.Equal(t, "What reduces costs?", q.Question())
	assert.Equal(t, "  What reduces costs?  ", q.Value())
}

func TestQuestionInput_CharLimit(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetValue(strings.Repeat("a", MaxQuestionLength+50))

	assert.Len(t, q.Value(), MaxQuestionLength)
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	q := NewQuestionInput(nil)

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	q := NewQuestionInput(nil)

	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())
	assert.Equal(t, 88, q.textinput.Width)

	q.SetWidth(10)
	assert.Equal(t, 20, q.textinput.Width)
}

func TestQuestionInput_ViewAndReset(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetValue("hello")

	assert.Contains(t, q.View(), "Ask:")

	q.Reset()
	assert.Empty(t, q.Value())
}
