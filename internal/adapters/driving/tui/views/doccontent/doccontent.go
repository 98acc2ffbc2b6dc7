// Package doccontent provides the document content view component for the TUI.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// reservedLines covers the title, separator and footer.
const reservedLines = 6

// View shows a document's reconstructed text in a scrollable viewport.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context
	viewport        viewport.Model

	document *domain.Document
	content  string
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		viewport:        viewport.New(80, 24-reservedLines),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument sets the document and loads its content.
func (v *View) SetDocument(doc *domain.Document) tea.Cmd {
	v.document = doc
	v.content = ""
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")
	v.viewport.GotoTop()
	return v.loadContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) loadContent() tea.Cmd {
	service := v.documentService
	doc := v.document
	ctx := v.ctx
	return func() tea.Msg {
		if doc == nil || service == nil {
			return messages.DocumentContentLoaded{Err: ErrNoDocumentService}
		}
		content, err := service.GetContent(ctx, doc.ItemID)
		return messages.DocumentContentLoaded{ItemID: doc.ItemID, Content: content, Err: err}
	}
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		case "home", "g":
			v.viewport.GotoTop()
			return v, nil
		case "end", "G":
			v.viewport.GotoBottom()
			return v, nil
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case messages.DocumentContentLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.content = msg.Content
		v.viewport.SetContent(v.wrap(msg.Content))
		v.viewport.GotoTop()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// wrap soft-wraps content to the viewport width.
func (v *View) wrap(content string) string {
	return v.styles.Normal.Width(max(v.width-4, 20)).Render(content)
}

// View renders the document content view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document Content"
	if v.document != nil {
		title = v.document.Title
		if title == "" {
			title = v.document.ItemID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case strings.TrimSpace(v.content) == "":
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%3.f%%]", v.viewport.ScrollPercent()*100)))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 1)
	if v.content != "" {
		v.viewport.SetContent(v.wrap(v.content))
	}
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the document content.
func (v *View) Content() string {
	return v.content
}

// AtTop reports whether the viewport shows the start of the content.
func (v *View) AtTop() bool {
	return v.viewport.AtTop()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
