// Package chunker provides a word-window text chunking processor.
//
// Windows are sized by characters but cut on word boundaries: words are
// accumulated until the window's length (each word plus one separator)
// reaches the budget. Identical input and parameters always produce
// identical chunks.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DefaultMaxLength is the default character budget per chunk.
const DefaultMaxLength = 800

// DefaultOverlapWords is the default number of words shared by consecutive chunks.
const DefaultOverlapWords = 0

// Processor splits document content into word windows.
// It implements the PostProcessor interface.
type Processor struct {
	maxLength    int
	overlapWords int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxLength sets the character budget per chunk.
func WithMaxLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLength = n
		}
	}
}

// WithOverlapWords sets how many words consecutive chunks share.
func WithOverlapWords(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlapWords = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxLength:    DefaultMaxLength,
		overlapWords: DefaultOverlapWords,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks with indices in source order.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	texts := Split(doc.Content, p.maxLength, p.overlapWords)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ItemID: doc.ItemID,
			Index:  i,
			Text:   text,
			Metadata: domain.ChunkMetadata{
				Title:     doc.Title,
				Source:    doc.Source,
				Kind:      doc.Kind,
				WordCount: strings.Count(text, " ") + 1,
			},
		}
	}

	return chunks, nil
}

// Split cuts text into word windows of roughly maxLength characters.
//
// A window is closed as soon as the sum of len(word)+1 over its words reaches
// maxLength, so a single word longer than maxLength still forms exactly one
// window. The trailing partial window is kept.
//
// With overlapWords > 0 the next window starts max(1, size-overlapWords) words
// after the previous window's start, where size is the previous window's word
// count. Splitting stops once a window reaches the last word.
func Split(text string, maxLength, overlapWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if overlapWords < 0 {
		overlapWords = 0
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start
		length := 0
		for end < len(words) {
			length += len(words[end]) + 1
			end++
			if length >= maxLength {
				break
			}
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		step := max(1, (end-start)-overlapWords)
		start += step
	}

	return chunks
}
