// Package docdetails provides the document details view component for the TUI.
package docdetails

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// View is the document details view.
type View struct {
	styles *styles.Styles

	details *driving.DocumentDetails
	width   int
	height  int
	ready   bool
	err     error
}

// NewView creates a new document details view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, width: 80, height: 24}
}

// SetDetails sets the document details to display.
func (v *View) SetDetails(details *driving.DocumentDetails) {
	v.details = details
	v.err = nil
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		}
	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

// fields returns the label/value rows shown for a document.
func (v *View) fields() [][2]string {
	d := v.details
	rows := [][2]string{
		{"ID", d.ItemID},
		{"Title", d.Title},
		{"Source", d.Source},
		{"Kind", d.Kind},
		{"SHA-256", d.SHA256},
		{"Chunks", fmt.Sprintf("%d", d.ChunkCount)},
		{"Words", fmt.Sprintf("%d", d.WordCount)},
	}
	if !d.CreatedAt.IsZero() {
		rows = append(rows, [2]string{"Created", d.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	return rows
}

// View renders the document details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.details == nil:
		b.WriteString(v.styles.Muted.Render("No document details available"))
		b.WriteString("\n")
	default:
		for _, row := range v.fields() {
			b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-10s", row[0]+":")))
			b.WriteString(" ")
			b.WriteString(v.styles.Normal.Render(row[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Details returns the current document details.
func (v *View) Details() *driving.DocumentDetails {
	return v.details
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
