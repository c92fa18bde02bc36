package mock

import "testing"

// table for exercising the matching rules in isolation.
func testTopics(t *testing.T) []Topic {
	t.Helper()
	topics, err := LoadTopics([]byte(`
topics:
  - key: capital
    answer: capital answer
    keywords: [capital, fund]
    patterns: ["minimum.*capital"]
  - key: deposits
    answer: deposit answer
    keywords: [deposit, savings]
    patterns: ["accept.*deposit"]
  - key: lending
    answer: lending answer
    keywords: [loan, lending, credit]
    patterns: []
`))
	if err != nil {
		t.Fatalf("LoadTopics failed: %v", err)
	}
	return topics
}

func newTestMatcher(t *testing.T, topics []Topic) *Matcher {
	t.Helper()
	m, err := NewMatcher(topics)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	return m
}

func TestMatchPatternWinsOverKeywordScore(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	// "deposit" and "savings" give the deposits topic the highest keyword
	// score, but the capital pattern fires first and must win outright.
	key, ok := m.Match("What is the minimum capital before I can accept a deposit of savings?")
	if !ok {
		t.Fatal("expected a match")
	}
	if key != "capital" {
		t.Errorf("got topic %q, want %q", key, "capital")
	}
}

func TestMatchFirstDeclaredPatternWins(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	// Fires both the capital and the deposits patterns; declaration
	// order decides.
	key, ok := m.Match("what minimum additional capital do I need to accept a deposit?")
	if !ok || key != "capital" {
		t.Errorf("got (%q, %v), want the first-declared (%q, true)", key, ok, "capital")
	}
}

func TestMatchSingleKeywordClearsThreshold(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	key, ok := m.Match("is my fund safe?")
	if !ok || key != "capital" {
		t.Errorf("got (%q, %v), want (%q, true)", key, ok, "capital")
	}
}

func TestMatchPatternIsCaseInsensitiveViaLowercasing(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	key, ok := m.Match("MINIMUM Capital requirements?")
	if !ok || key != "capital" {
		t.Errorf("got (%q, %v), want (%q, true)", key, ok, "capital")
	}
}

func TestMatchKeywordScoring(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	// Two lending keywords beat one deposit keyword.
	key, ok := m.Match("Is a loan a form of credit?")
	if !ok || key != "lending" {
		t.Errorf("got (%q, %v), want (%q, true)", key, ok, "lending")
	}
}

func TestMatchTieKeepsFirstDeclaredTopic(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	// One keyword hit each for capital ("fund") and deposits ("deposit").
	// The replacement rule is strictly-greater, so the earlier topic stays.
	key, ok := m.Match("fund or deposit")
	if !ok {
		t.Fatal("expected a match")
	}
	if key != "capital" {
		t.Errorf("got topic %q, want first-declared %q", key, "capital")
	}
}

func TestMatchRepeatedKeywordDoesNotBoost(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	// "deposit" twice still counts as one distinct keyword, so this is
	// a 1.0 vs 1.0 tie and the earlier-declared topic keeps it.
	key, ok := m.Match("fund a deposit with another deposit")
	if !ok {
		t.Fatal("expected a match")
	}
	if key != "capital" {
		t.Errorf("got topic %q, want first-declared %q", key, "capital")
	}
}

func TestMatchMultiKeywordBoostOvertakesEarlierTopic(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	// Capital hits one keyword ("fund", score 1.0); lending hits two
	// distinct keywords ("loan", "credit", score 2 x 1.5 = 3.0) and
	// wins despite being declared last.
	key, ok := m.Match("fund a loan on credit")
	if !ok {
		t.Fatal("expected a match")
	}
	if key != "lending" {
		t.Errorf("got topic %q, want boosted %q", key, "lending")
	}
}

func TestMatchNoTopicBelowThreshold(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	if key, ok := m.Match("Tell me about cricket."); ok {
		t.Errorf("expected no match, got %q", key)
	}
	if key, ok := m.Match(""); ok {
		t.Errorf("expected no match for empty question, got %q", key)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))

	question := "How do savings deposits relate to credit?"
	first, firstOK := m.Match(question)
	for i := 0; i < 50; i++ {
		key, ok := m.Match(question)
		if key != first || ok != firstOK {
			t.Fatalf("iteration %d: got (%q, %v), want (%q, %v)", i, key, ok, first, firstOK)
		}
	}
}

func TestDefaultTopicsLoadAndCompile(t *testing.T) {
	topics, err := DefaultTopics()
	if err != nil {
		t.Fatalf("DefaultTopics failed: %v", err)
	}
	if len(topics) != 15 {
		t.Errorf("got %d topics, want 15", len(topics))
	}
	for _, topic := range topics {
		if len(topic.compiled) != len(topic.Patterns) {
			t.Errorf("topic %q: %d compiled patterns, want %d", topic.Key, len(topic.compiled), len(topic.Patterns))
		}
		if len(topic.Sources) == 0 {
			t.Errorf("topic %q has no sources", topic.Key)
		}
		if topic.Key == "systemically important" {
			found := false
			for _, kw := range topic.Keywords {
				if kw == "si" {
					found = true
				}
			}
			if !found {
				t.Error(`systemically-important topic is missing the "si" keyword`)
			}
		}
	}
}

func TestLoadTopicsRejectsBadTables(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty table", "topics: []"},
		{"missing key", "topics:\n  - answer: a\n"},
		{"missing answer", "topics:\n  - key: k\n"},
		{"duplicate key", "topics:\n  - key: k\n    answer: a\n  - key: k\n    answer: b\n"},
		{"invalid pattern", "topics:\n  - key: k\n    answer: a\n    patterns: [\"(\"]\n"},
		{"empty keyword", "topics:\n  - key: k\n    answer: a\n    keywords: [\"\"]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadTopics([]byte(tc.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestKeysPreserveDeclarationOrder(t *testing.T) {
	m := newTestMatcher(t, testTopics(t))
	want := []string{"capital", "deposits", "lending"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
