package core

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"regassist.in/nbfc-chatbot/internal/store"
)

// Conversation is an append-only in-memory log of turns for one session.
// Sessions are independently owned; the mutex only guards against the
// HTTP server handling two requests for the same session at once.
type Conversation struct {
	mu    sync.Mutex
	turns []store.ConversationTurn
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a turn at the end of the log.
func (c *Conversation) Append(turn store.ConversationTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// All returns the turns in arrival order. The returned slice is a copy.
func (c *Conversation) All() []store.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]store.ConversationTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Clear empties the log. There is no undo.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

// WriteTranscript writes the log as a plain-text transcript: a header
// line, then a Q/A pair and separator per turn.
func (c *Conversation) WriteTranscript(w io.Writer) error {
	turns := c.All()

	if _, err := fmt.Fprintf(w, "NBFC Chatbot Conversation Log\n%s\n\n", headerRule); err != nil {
		return err
	}
	for i, turn := range turns {
		if _, err := fmt.Fprintf(w, "Turn %d:\nQ: %s\nA: %s\n%s\n\n", i+1, turn.Question, turn.Answer, turnRule); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerRule = strings.Repeat("=", 50)
	turnRule   = strings.Repeat("-", 30)
)
