package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	assert.Equal(t, lipgloss.Color("#7C3AED"), theme.Primary)
	assert.Equal(t, lipgloss.Color("#F38BA8"), theme.Error)
	assert.NotEmpty(t, theme.Bar)
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)
	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_CustomTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Primary = lipgloss.Color("#000000")

	s := NewStyles(theme)
	assert.Same(t, theme, s.Theme())
	assert.Equal(t, lipgloss.Color("#000000"), s.Title.GetForeground())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("Sercha"), "Sercha")
	assert.Contains(t, s.Answer.Render("an answer"), "an answer")
	assert.Contains(t, s.Citation.Render("[1] c1"), "c1")
}

func TestStyles_ForStatus(t *testing.T) {
	s := DefaultStyles()
	theme := s.Theme()

	tests := []struct {
		status domain.AnswerStatus
		want   lipgloss.TerminalColor
	}{
		{domain.AnswerStatusOK, theme.Success},
		{domain.AnswerStatusNoHits, theme.Warning},
		{domain.AnswerStatusEmbeddingError, theme.Error},
		{domain.AnswerStatusError, theme.Error},
		{domain.AnswerStatus("other"), theme.Muted},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, s.ForStatus(tt.status).GetForeground())
		})
	}
}
