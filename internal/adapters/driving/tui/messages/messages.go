// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// AnswerCompleted carries the result of a question back to the model.
type AnswerCompleted struct {
	Question string
	Result   domain.AnswerResult
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewDocuments lists ingested documents.
	ViewDocuments
	// ViewDocContent shows document content.
	ViewDocContent
	// ViewDocDetails shows document metadata.
	ViewDocDetails
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewHelp:
		return "help"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewDocDetails:
		return "doc_details"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the list of documents and index stats.
type DocumentsLoaded struct {
	Documents []domain.Document
	Stats     *driving.IndexStats
	Err       error
}

// DocumentSelected signals a document was selected.
type DocumentSelected struct {
	Document domain.Document
}

// DocumentContentLoaded carries the content of a document.
type DocumentContentLoaded struct {
	ItemID  string
	Content string
	Err     error
}

// DocumentDetailsLoaded carries the metadata of a document.
type DocumentDetailsLoaded struct {
	ItemID  string
	Details *driving.DocumentDetails
	Err     error
}

// DocumentDeleted signals a document was deleted.
type DocumentDeleted struct {
	ItemID string
	Err    error
}
