// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// citationRows is the height reserved for the sources list.
const citationRows = 6

// View shows a question input, the generated answer and its sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answer    viewport.Model
	citations *list.CitationList
	statusbar *status.Bar

	answerService driving.AnswerService
	topK          int
	ctx           context.Context

	question   string
	result     *domain.AnswerResult
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates an ask view. topK <= 0 uses the configured default.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		answer:        viewport.New(80, 10),
		citations:     list.NewCitationList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		topK:          topK,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Up), keymap.Matches(msg.String(), v.keymap.Down):
		v.citations, _ = v.citations.Update(msg)
		return v, nil
	}

	switch msg.String() {
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		v.answer, cmd = v.answer.Update(msg)
		return v, cmd
	}
	return v, nil
}

// submit sends the current question, or does nothing when it is blank.
func (v *View) submit() tea.Cmd {
	question := v.input.Question()
	if question == "" {
		return nil
	}

	v.question = question
	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateAsking)
	v.statusbar.SetMessage("")
	return v.performAsk(question)
}

func (v *View) performAsk(question string) tea.Cmd {
	service := v.answerService
	ctx := v.ctx
	topK := v.topK
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		return messages.AnswerCompleted{Question: question, Result: service.Ask(ctx, question, topK)}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	result := msg.Result
	v.result = &result
	v.question = msg.Question
	v.err = nil

	v.answer.SetContent(v.renderAnswer(result))
	v.answer.GotoTop()
	v.citations.SetCitations(result.Citations)
	v.statusbar.SetAnswer(result)

	v.focusInput = false
	v.input.Blur()
}

func (v *View) renderAnswer(result domain.AnswerResult) string {
	width := max(v.width-4, 20)
	return v.styles.Answer.Width(width).Render(result.Answer)
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Sercha RAG"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.result != nil {
		sections = append(sections,
			v.styles.Subtitle.Render("Q: ")+v.styles.Normal.Render(v.question),
			v.answer.View(),
			"",
			v.citations.View(),
		)
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.citations.SetDimensions(width, citationRows)
	v.answer.Width = width
	v.answer.Height = max(height-citationRows-12, 3)
	if v.result != nil {
		v.answer.SetContent(v.renderAnswer(*v.result))
	}
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.SetValue("")
	v.input.Focus()
	v.question = ""
	v.result = nil
	v.err = nil
	v.answer.SetContent("")
	v.citations.SetCitations(nil)
	v.statusbar.Clear()
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Result returns the last answer, or nil before the first one.
func (v *View) Result() *domain.AnswerResult {
	return v.result
}

// Citations returns the citations of the last answer.
func (v *View) Citations() []domain.Citation {
	return v.citations.Citations()
}

// SelectedCitation returns the index of the highlighted citation.
func (v *View) SelectedCitation() int {
	return v.citations.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Ready returns whether the view has dimensions.
func (v *View) Ready() bool {
	return v.ready
}
