package mock

import (
	"fmt"
	"strings"
)

// matchThreshold is the minimum keyword score required to accept a topic.
const matchThreshold = 1.0

// multiHitBoost is applied when a question hits more than one of a
// topic's keywords.
const multiHitBoost = 1.5

// Matcher resolves questions to topic keys. Matching is deterministic:
// the same question always resolves to the same topic.
type Matcher struct {
	topics []Topic
	byKey  map[string]Topic
}

// NewMatcher builds a matcher over the given table. Topic order is
// significant and preserved.
func NewMatcher(topics []Topic) (*Matcher, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("cannot build matcher over an empty topic table")
	}
	byKey := make(map[string]Topic, len(topics))
	for _, topic := range topics {
		byKey[topic.Key] = topic
	}
	return &Matcher{topics: topics, byKey: byKey}, nil
}

// Match resolves a question to a topic key. The pattern pass runs first:
// topics are walked in declaration order and the first firing pattern
// decides immediately. Only when no pattern fires does the keyword pass
// score topics by how many distinct keywords occur in the question, with
// a boost for topics hit through more than one keyword. Repeating the
// same keyword does not raise the score. Ties keep the earliest-declared
// topic. Returns false when no topic clears the threshold.
func (m *Matcher) Match(question string) (string, bool) {
	questionLower := strings.ToLower(question)

	for _, topic := range m.topics {
		for _, re := range topic.compiled {
			if re.MatchString(questionLower) {
				return topic.Key, true
			}
		}
	}

	bestKey := ""
	bestScore := 0.0
	for _, topic := range m.topics {
		hits := 0
		for _, keyword := range topic.Keywords {
			if strings.Contains(questionLower, keyword) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits)
		if hits > 1 {
			score *= multiHitBoost
		}
		if score > bestScore {
			bestScore = score
			bestKey = topic.Key
		}
	}

	if bestScore >= matchThreshold {
		return bestKey, true
	}
	return "", false
}

// Topic looks up a topic by key.
func (m *Matcher) Topic(key string) (Topic, bool) {
	topic, ok := m.byKey[key]
	return topic, ok
}

// Keys lists the topic keys in declaration order.
func (m *Matcher) Keys() []string {
	keys := make([]string, 0, len(m.topics))
	for _, topic := range m.topics {
		keys = append(keys, topic.Key)
	}
	return keys
}
