package core

import (
	"testing"

	"regassist.in/nbfc-chatbot/internal/store"
)

func resultsWithScores(scores ...float64) []store.RetrievalResult {
	results := make([]store.RetrievalResult, len(scores))
	for i, s := range scores {
		results[i] = store.RetrievalResult{Score: s}
	}
	return results
}

func TestConfidenceFromScores(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		want   store.Confidence
	}{
		{"high mean", []float64{0.8, 0.6}, store.ConfidenceHigh},
		{"0.6 is high", []float64{0.6}, store.ConfidenceHigh},
		{"0.4 is medium", []float64{0.4}, store.ConfidenceMedium},
		{"0.1 is low", []float64{0.1}, store.ConfidenceLow},
		{"medium mean", []float64{0.4, 0.4}, store.ConfidenceMedium},
		{"low mean", []float64{0.1, 0.1}, store.ConfidenceLow},
		{"exactly high threshold is medium", []float64{0.5}, store.ConfidenceMedium},
		{"just above high threshold", []float64{0.500001}, store.ConfidenceHigh},
		{"exactly medium threshold is low", []float64{0.3}, store.ConfidenceLow},
		{"just above medium threshold", []float64{0.300001}, store.ConfidenceMedium},
		{"mixed scores average out", []float64{0.9, 0.1}, store.ConfidenceMedium},
		{"no results", nil, store.ConfidenceLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConfidenceFromScores(resultsWithScores(tc.scores...)); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConfidenceFromSourceCount(t *testing.T) {
	cases := []struct {
		name  string
		count int
		want  store.Confidence
	}{
		{"no sources", 0, store.ConfidenceMedium},
		{"one source", 1, store.ConfidenceMedium},
		{"two sources", 2, store.ConfidenceHigh},
		{"many sources", 5, store.ConfidenceHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results := make([]store.RetrievalResult, tc.count)
			if got := ConfidenceFromSourceCount(results); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

// The two policies must stay independent: identical inputs can yield
// different labels depending on which backend produced them.
func TestConfidencePoliciesDiverge(t *testing.T) {
	results := resultsWithScores(0.1, 0.1)
	if ConfidenceFromScores(results) != store.ConfidenceLow {
		t.Error("score policy should rate two weak matches low")
	}
	if ConfidenceFromSourceCount(results) != store.ConfidenceHigh {
		t.Error("count policy should rate two sources high")
	}
}
