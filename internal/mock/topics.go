// Package mock answers questions from a canned topic table instead of a
// live index and LLM. It exists so the chat surfaces can be exercised
// end-to-end without an API key or a Chroma server.
package mock

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"regassist.in/nbfc-chatbot/internal/store"
)

//go:embed topics.yaml
var embeddedTopics []byte

// TopicSource is a canned citation carried by a topic.
type TopicSource struct {
	Page    string `yaml:"page"`
	Source  string `yaml:"source"`
	Content string `yaml:"content"`
}

// Topic is one entry of the canned answer table. Keywords drive the
// scoring pass, patterns the short-circuit pass.
type Topic struct {
	Key        string           `yaml:"key"`
	Answer     string           `yaml:"answer"`
	Confidence store.Confidence `yaml:"confidence"`
	Sources    []TopicSource    `yaml:"sources"`
	Keywords   []string         `yaml:"keywords"`
	Patterns   []string         `yaml:"patterns"`

	compiled []*regexp.Regexp
}

type topicFile struct {
	Topics []Topic `yaml:"topics"`
}

// LoadTopics parses and validates a topic table. Declaration order is
// preserved because the matcher depends on it.
func LoadTopics(data []byte) ([]Topic, error) {
	var file topicFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}
	if len(file.Topics) == 0 {
		return nil, fmt.Errorf("topic table is empty")
	}

	seen := make(map[string]bool, len(file.Topics))
	for i := range file.Topics {
		topic := &file.Topics[i]
		if topic.Key == "" {
			return nil, fmt.Errorf("topic %d has no key", i)
		}
		if seen[topic.Key] {
			return nil, fmt.Errorf("duplicate topic key %q", topic.Key)
		}
		seen[topic.Key] = true
		if topic.Answer == "" {
			return nil, fmt.Errorf("topic %q has no answer", topic.Key)
		}
		if topic.Confidence == "" {
			topic.Confidence = store.ConfidenceHigh
		}
		for _, keyword := range topic.Keywords {
			// A blank keyword would substring-match every question.
			if keyword == "" {
				return nil, fmt.Errorf("topic %q has an empty keyword", topic.Key)
			}
		}
		for _, pattern := range topic.Patterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("topic %q has invalid pattern %q: %w", topic.Key, pattern, err)
			}
			topic.compiled = append(topic.compiled, re)
		}
	}
	return file.Topics, nil
}

// DefaultTopics loads the embedded NBFC topic table.
func DefaultTopics() ([]Topic, error) {
	return LoadTopics(embeddedTopics)
}

// TopicsFromFile loads a topic table from an external YAML file,
// overriding the embedded one.
func TopicsFromFile(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}
	return LoadTopics(data)
}

// result converts the topic to the common answer shape.
func (t Topic) result() store.QueryResult {
	sources := make([]store.SourceCitation, 0, len(t.Sources))
	for _, src := range t.Sources {
		sources = append(sources, store.NewSourceCitation(src.Page, src.Source, src.Content))
	}
	return store.QueryResult{
		Answer:     t.Answer,
		Sources:    sources,
		Confidence: t.Confidence,
	}
}
