package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"regassist.in/nbfc-chatbot/internal/store"
)

// Chatbot is the single entry point callers use: Ask, History,
// ClearHistory. It never returns an error for a question; failures below
// the synthesizer/matcher boundary are converted into a QueryResult that
// explains what went wrong.
type Chatbot struct {
	backend Backend
	history *Conversation
}

func NewChatbot(backend Backend) *Chatbot {
	return &Chatbot{
		backend: backend,
		history: NewConversation(),
	}
}

// Ask answers a question and records the turn. Every question ends up in
// history, including ones whose answer explains a failure.
func (c *Chatbot) Ask(ctx context.Context, question string) store.QueryResult {
	result, err := c.backend.Answer(ctx, question)
	if err != nil {
		log.Printf("Error processing question: %v", err)
		result = store.QueryResult{
			Question:   question,
			Answer:     fmt.Sprintf("I apologize, but I encountered an error while processing your question: %v", err),
			Sources:    []store.SourceCitation{},
			Confidence: store.ConfidenceLow,
		}
	}
	result.Question = question

	c.history.Append(store.ConversationTurn{
		Question: question,
		Answer:   result.Answer,
	})
	return result
}

// History returns the conversation turns in arrival order.
func (c *Chatbot) History() []store.ConversationTurn {
	return c.history.All()
}

// ClearHistory empties the conversation log.
func (c *Chatbot) ClearHistory() {
	c.history.Clear()
}

// SaveTranscript flushes the conversation to a plain-text file, creating
// parent directories as needed.
func (c *Chatbot) SaveTranscript(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer f.Close()

	if err := c.history.WriteTranscript(f); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
