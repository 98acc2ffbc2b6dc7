// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// ActionOption represents a document action.
type ActionOption int

const (
	ActionShowContent ActionOption = iota
	ActionShowDetails
	ActionDelete
	ActionCancel
)

var actionLabels = []struct {
	action ActionOption
	label  string
}{
	{ActionShowContent, "Show Content"},
	{ActionShowDetails, "Show Details"},
	{ActionDelete, "Delete"},
	{ActionCancel, "Cancel"},
}

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	documents    []domain.Document
	stats        *driving.IndexStats
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
	loading      bool
	showingMenu  bool
	menuSelected ActionOption
	scrollOffset int
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the document list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.showingMenu = false
	v.notice = ""
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	service := v.documentService
	ctx := v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}

		docs, err := service.List(ctx)
		if err != nil {
			return messages.DocumentsLoaded{Err: err}
		}
		// Stats are informational; a failure leaves the header without counts.
		stats, _ := service.Stats(ctx) //nolint:errcheck
		return messages.DocumentsLoaded{Documents: docs, Stats: stats}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.documents = msg.Documents
		v.stats = msg.Stats
		v.err = nil
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Deleted " + msg.ItemID
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if len(v.documents) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionShowContent
		}
	case "d":
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.deleteDocument(doc.ItemID)
		}
	case "r":
		v.loading = true
		return v, v.loadDocuments()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionShowContent {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		return v.handleMenuSelect()
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false

	doc := v.SelectedDocument()
	if doc == nil {
		return v, nil
	}
	selected := *doc

	switch v.menuSelected {
	case ActionShowContent:
		return v, func() tea.Msg {
			return messages.DocumentSelected{Document: selected}
		}
	case ActionShowDetails:
		return v, v.loadDetails(selected.ItemID)
	case ActionDelete:
		return v, v.deleteDocument(selected.ItemID)
	case ActionCancel:
	}

	return v, nil
}

func (v *View) loadDetails(itemID string) tea.Cmd {
	service := v.documentService
	ctx := v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoDocumentService}
		}
		details, err := service.GetDetails(ctx, itemID)
		return messages.DocumentDetailsLoaded{ItemID: itemID, Details: details, Err: err}
	}
}

func (v *View) deleteDocument(itemID string) tea.Cmd {
	service := v.documentService
	ctx := v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.DocumentDeleted{ItemID: itemID, Err: ErrNoDocumentService}
		}
		return messages.DocumentDeleted{ItemID: itemID, Err: service.Delete(ctx, itemID)}
	}
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents ingested."))
	case v.showingMenu:
		b.WriteString(v.renderActionMenu())
		return b.String()
	default:
		b.WriteString(v.renderList())
	}

	if v.notice != "" && v.err == nil {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) title() string {
	if v.stats != nil {
		return fmt.Sprintf("Documents (%d, %d vectors)", v.stats.Documents, v.stats.Vectors)
	}
	return fmt.Sprintf("Documents (%d)", len(v.documents))
}

func (v *View) renderList() string {
	visible := v.visibleItemCount()
	lines := make([]string, 0, visible+1)
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visible; i++ {
		lines = append(lines, v.renderDocument(i, &v.documents[i]))
	}

	if len(v.documents) > visible {
		lines = append(lines, "", v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.documents)),
			len(v.documents))))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := doc.Title
	if title == "" {
		title = doc.ItemID
	}

	maxTitleLen := max(v.width/2-4, 10)
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	source := doc.Source
	maxSourceLen := max(v.width/2-4, 10)
	if len(source) > maxSourceLen {
		source = "..." + source[len(source)-maxSourceLen+3:]
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, source))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
		v.styles.Muted.Render(source)
}

func (v *View) renderActionMenu() string {
	var b strings.Builder

	if doc := v.SelectedDocument(); doc != nil {
		title := doc.Title
		if title == "" {
			title = doc.ItemID
		}
		b.WriteString(v.styles.Subtitle.Render("Actions for: " + title))
		b.WriteString("\n\n")
	}

	for _, opt := range actionLabels {
		if v.menuSelected == opt.action {
			b.WriteString(v.styles.Selected.Render("> " + opt.label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + opt.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [d] delete  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
