package mock

import (
	"context"
	"strings"

	"regassist.in/nbfc-chatbot/internal/store"
)

// fallbackAnswer is returned when no topic matches. It steers the user
// toward questions the table can answer.
const fallbackAnswer = "I don't have specific information about that topic in my knowledge base. " +
	"You could try asking about: what an NBFC is, who regulates NBFCs, " +
	"minimum capital requirements, types of NBFCs, deposit acceptance rules, " +
	"the registration process, prudential norms, compliance requirements, " +
	"asset classification, or penalties for violations."

// Backend answers questions from the canned topic table. It satisfies
// the same contract as the retrieval-backed paths but never performs
// network calls and never fails.
type Backend struct {
	matcher *Matcher
}

// NewBackend builds a mock backend over the embedded topic table.
func NewBackend() (*Backend, error) {
	topics, err := DefaultTopics()
	if err != nil {
		return nil, err
	}
	return NewBackendWithTopics(topics)
}

// NewBackendWithTopics builds a mock backend over a caller-supplied table.
func NewBackendWithTopics(topics []Topic) (*Backend, error) {
	matcher, err := NewMatcher(topics)
	if err != nil {
		return nil, err
	}
	return &Backend{matcher: matcher}, nil
}

// Answer resolves the question against the topic table. Unmatched
// questions get the guidance fallback with low confidence and no
// sources. The error return is always nil; it exists to satisfy the
// backend contract.
func (b *Backend) Answer(_ context.Context, question string) (store.QueryResult, error) {
	key, ok := b.matcher.Match(question)
	if !ok {
		return store.QueryResult{
			Question:   question,
			Answer:     fallbackAnswer,
			Sources:    []store.SourceCitation{},
			Confidence: store.ConfidenceLow,
		}, nil
	}

	topic, _ := b.matcher.Topic(key)
	result := topic.result()
	result.Question = question
	return result, nil
}

// Topics lists the askable topic keys, for the /api/topics endpoint and
// the TUI help line.
func (b *Backend) Topics() []string {
	return b.matcher.Keys()
}

// TopicSummary renders the keys as a single comma-separated line.
func (b *Backend) TopicSummary() string {
	return strings.Join(b.matcher.Keys(), ", ")
}
