package core

import (
	"regassist.in/nbfc-chatbot/internal/store"
	"regassist.in/nbfc-chatbot/internal/utils"
)

// Score thresholds for the mean-similarity confidence policy. These are
// empirical values tuned against the current embedding model, not
// probabilities; a different model likely needs recalibration.
const (
	highScoreThreshold   = 0.5
	mediumScoreThreshold = 0.3
)

// How many supporting sources the count-based policy wants before calling
// an answer high-confidence.
const highConfidenceSourceCount = 2

// ConfidenceFromScores derives a confidence label from the mean of the
// retrieved similarity scores. Used by backends whose retriever exposes
// per-chunk scores.
func ConfidenceFromScores(results []store.RetrievalResult) store.Confidence {
	if len(results) == 0 {
		return store.ConfidenceLow
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	mean := utils.Mean(scores)
	switch {
	case mean > highScoreThreshold:
		return store.ConfidenceHigh
	case mean > mediumScoreThreshold:
		return store.ConfidenceMedium
	default:
		return store.ConfidenceLow
	}
}

// ConfidenceFromSourceCount derives a confidence label from how many
// sources were retrieved. Used by backends whose retriever returns chunks
// without similarity scores. Deliberately kept separate from
// ConfidenceFromScores: the two policies belong to different retrieval
// back-ends and merging them would change observable behavior.
func ConfidenceFromSourceCount(results []store.RetrievalResult) store.Confidence {
	if len(results) >= highConfidenceSourceCount {
		return store.ConfidenceHigh
	}
	return store.ConfidenceMedium
}
