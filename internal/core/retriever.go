package core

import (
	"context"
	"fmt"
	"log"
	"sort"

	"regassist.in/nbfc-chatbot/internal/store"
	"regassist.in/nbfc-chatbot/internal/utils"
)

// DefaultTopK is how many chunks are retrieved per question when the
// caller does not override it.
const DefaultTopK = 4

// Embedder turns text into a fixed-dimension vector. Implemented by
// LLMService in production and by fakes in tests.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]store.RetrievalResult, error)
}

// VectorRetriever ranks the in-memory chunk cache by dot-product similarity
// between the query embedding and each stored embedding. The stored vectors
// are not normalized, so scores are raw dot products.
type VectorRetriever struct {
	chunks   []store.Chunk
	embedder Embedder
}

// NewVectorRetriever builds a retriever over an already integrity-checked
// chunk set (see store.SQLiteStore.LoadChunks). Chunks must be in insertion
// order; ties in score keep that order.
func NewVectorRetriever(chunks []store.Chunk, embedder Embedder) *VectorRetriever {
	if len(chunks) == 0 {
		log.Println("Warning: VectorRetriever initialized with no chunks. Run ingestion before serving questions.")
	}
	return &VectorRetriever{chunks: chunks, embedder: embedder}
}

// Retrieve embeds the query and returns up to topK chunks ordered by
// strictly non-increasing score. An empty index yields an empty result,
// not an error.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int) ([]store.RetrievalResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(r.chunks) == 0 {
		return nil, nil
	}

	queryEmbedding, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get query embedding: %w", err)
	}

	results := make([]store.RetrievalResult, 0, len(r.chunks))
	for _, chunk := range r.chunks {
		score, err := utils.DotProduct(queryEmbedding, chunk.Embedding)
		if err != nil {
			return nil, fmt.Errorf("failed to score chunk %d: %w", chunk.ID, err)
		}
		results = append(results, store.RetrievalResult{Chunk: chunk, Score: score})
	}

	// Stable sort keeps insertion order (ascending chunk id) for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Size reports how many chunks the retriever ranks over.
func (r *VectorRetriever) Size() int {
	return len(r.chunks)
}
