// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// CitationList displays the chunks an answer cited in a navigable list.
type CitationList struct {
	citations []domain.Citation
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewCitationList creates an empty citation list.
func NewCitationList(s *styles.Styles) *CitationList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CitationList{
		styles: s,
		width:  80,
		height: 6,
	}
}

// Init initialises the list.
func (c *CitationList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation.
func (c *CitationList) Update(msg tea.Msg) (*CitationList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the visible citations.
func (c *CitationList) View() string {
	if len(c.citations) == 0 {
		return c.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(c.citations)+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(c.citations))))

	visible := max(c.height-1, 1)
	start := 0
	if c.selected >= visible {
		start = c.selected - visible + 1
	}
	end := min(start+visible, len(c.citations))

	for i := start; i < end; i++ {
		lines = append(lines, c.renderCitation(i))
	}

	return strings.Join(lines, "\n")
}

func (c *CitationList) renderCitation(i int) string {
	cite := c.citations[i]
	label := fmt.Sprintf("[%d] %s", i+1, cite.ChunkID)
	score := fmt.Sprintf("%.3f", cite.Score)

	if i == c.selected {
		return c.styles.Selected.Render("> " + label + "  " + score)
	}
	return "  " + c.styles.Citation.Render(label) + "  " + c.styles.Muted.Render(score)
}

// SetCitations replaces the list and resets the selection.
func (c *CitationList) SetCitations(citations []domain.Citation) {
	c.citations = citations
	c.selected = 0
}

// Citations returns the current citations.
func (c *CitationList) Citations() []domain.Citation {
	return c.citations
}

// Selected returns the index of the selected citation.
func (c *CitationList) Selected() int {
	return c.selected
}

// SelectedCitation returns the selected citation, or nil when empty.
func (c *CitationList) SelectedCitation() *domain.Citation {
	if c.selected < 0 || c.selected >= len(c.citations) {
		return nil
	}
	return &c.citations[c.selected]
}

// MoveUp moves the selection up.
func (c *CitationList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves the selection down.
func (c *CitationList) MoveDown() {
	if c.selected < len(c.citations)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *CitationList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Height returns the current height.
func (c *CitationList) Height() int {
	return c.height
}

// Count returns the number of citations.
func (c *CitationList) Count() int {
	return len(c.citations)
}
