package core

import (
	"context"

	"regassist.in/nbfc-chatbot/internal/store"
)

// noRelevantInfoAnswer is returned when retrieval yields nothing usable.
// An empty retrieval is a defined outcome, not an error.
const noRelevantInfoAnswer = "I couldn't find relevant information to answer your question."

// Backend answers a single question. Implementations: RAGBackend over a
// vector index, mock.Backend over the canned topic table.
type Backend interface {
	Answer(ctx context.Context, question string) (store.QueryResult, error)
}

// ConfidencePolicy maps a retrieval outcome to a confidence label.
type ConfidencePolicy func([]store.RetrievalResult) store.Confidence

// RAGBackend chains retrieval and synthesis. The confidence policy is
// fixed by the constructor because it belongs to the retriever type, not
// to the caller.
type RAGBackend struct {
	retriever Retriever
	synth     *Synthesizer
	policy    ConfidencePolicy
	topK      int
}

// NewLocalBackend answers from the in-process dot-product index. Its
// retriever exposes real similarity scores, so confidence comes from the
// mean score.
func NewLocalBackend(retriever *VectorRetriever, synth *Synthesizer, topK int) *RAGBackend {
	return &RAGBackend{retriever: retriever, synth: synth, policy: ConfidenceFromScores, topK: topK}
}

// NewChromaBackend answers from a Chroma collection. That retriever
// returns chunks without scores, so confidence falls back to counting
// sources.
func NewChromaBackend(retriever *ChromaRetriever, synth *Synthesizer, topK int) *RAGBackend {
	return &RAGBackend{retriever: retriever, synth: synth, policy: ConfidenceFromSourceCount, topK: topK}
}

func (b *RAGBackend) Answer(ctx context.Context, question string) (store.QueryResult, error) {
	results, err := b.retriever.Retrieve(ctx, question, b.topK)
	if err != nil {
		return store.QueryResult{}, err
	}

	if len(results) == 0 {
		return store.QueryResult{
			Question:   question,
			Answer:     noRelevantInfoAnswer,
			Sources:    []store.SourceCitation{},
			Confidence: store.ConfidenceLow,
		}, nil
	}

	chunks := make([]store.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}

	answer, sources, err := b.synth.Synthesize(ctx, question, chunks)
	if err != nil {
		return store.QueryResult{}, err
	}

	return store.QueryResult{
		Question:   question,
		Answer:     answer,
		Sources:    sources,
		Confidence: b.policy(results),
	}, nil
}
