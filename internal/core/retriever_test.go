package core

import (
	"context"
	"errors"
	"testing"

	"regassist.in/nbfc-chatbot/internal/store"
)

// fakeEmbedder returns a fixed vector for every text.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) GetEmbedding(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func chunkWithEmbedding(id int64, embedding []float32) store.Chunk {
	return store.Chunk{ID: id, Content: "chunk", Source: "doc", Page: 1, Embedding: embedding}
}

func TestRetrieveOrdersByDescendingScore(t *testing.T) {
	chunks := []store.Chunk{
		chunkWithEmbedding(1, []float32{1, 0}),
		chunkWithEmbedding(2, []float32{3, 0}),
		chunkWithEmbedding(3, []float32{2, 0}),
	}
	r := NewVectorRetriever(chunks, &fakeEmbedder{vector: []float32{1, 0}})

	results, err := r.Retrieve(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %v then %v", i, results[i-1].Score, results[i].Score)
		}
	}
	if results[0].Chunk.ID != 2 {
		t.Errorf("best chunk is %d, want 2", results[0].Chunk.ID)
	}
}

func TestRetrieveUsesRawDotProduct(t *testing.T) {
	// A longer unnormalized vector must outrank a shorter aligned one;
	// that distinguishes dot product from cosine similarity.
	chunks := []store.Chunk{
		chunkWithEmbedding(1, []float32{1, 0}),  // cosine 1.0, dot 1.0
		chunkWithEmbedding(2, []float32{10, 5}), // cosine < 1.0, dot 10.0
	}
	r := NewVectorRetriever(chunks, &fakeEmbedder{vector: []float32{1, 0}})

	results, err := r.Retrieve(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if results[0].Chunk.ID != 2 {
		t.Errorf("best chunk is %d, want the high-magnitude chunk 2", results[0].Chunk.ID)
	}
	if results[0].Score != 10 {
		t.Errorf("got score %v, want raw dot product 10", results[0].Score)
	}
}

func TestRetrieveCapsAtAvailableChunks(t *testing.T) {
	chunks := []store.Chunk{
		chunkWithEmbedding(1, []float32{1}),
		chunkWithEmbedding(2, []float32{2}),
	}
	r := NewVectorRetriever(chunks, &fakeEmbedder{vector: []float32{1}})

	results, err := r.Retrieve(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want all 2 chunks", len(results))
	}
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	chunks := make([]store.Chunk, 6)
	for i := range chunks {
		chunks[i] = chunkWithEmbedding(int64(i+1), []float32{float32(i)})
	}
	r := NewVectorRetriever(chunks, &fakeEmbedder{vector: []float32{1}})

	results, err := r.Retrieve(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != DefaultTopK {
		t.Errorf("got %d results, want DefaultTopK=%d", len(results), DefaultTopK)
	}
}

func TestRetrieveTiesKeepInsertionOrder(t *testing.T) {
	chunks := []store.Chunk{
		chunkWithEmbedding(1, []float32{1, 0}),
		chunkWithEmbedding(2, []float32{1, 0}),
		chunkWithEmbedding(3, []float32{1, 0}),
	}
	r := NewVectorRetriever(chunks, &fakeEmbedder{vector: []float32{1, 1}})

	results, err := r.Retrieve(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if results[i].Chunk.ID != want {
			t.Errorf("result %d: chunk %d, want %d", i, results[i].Chunk.ID, want)
		}
	}
}

func TestRetrieveEmptyIndexReturnsNoResults(t *testing.T) {
	r := NewVectorRetriever(nil, &fakeEmbedder{vector: []float32{1}})

	results, err := r.Retrieve(context.Background(), "q", 4)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from an empty index, want 0", len(results))
	}
}

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	chunks := []store.Chunk{chunkWithEmbedding(1, []float32{1})}
	r := NewVectorRetriever(chunks, &fakeEmbedder{err: errors.New("quota exceeded")})

	if _, err := r.Retrieve(context.Background(), "q", 4); err == nil {
		t.Error("expected an error from the failing embedder")
	}
}

func TestRetrieveRejectsDimensionMismatch(t *testing.T) {
	chunks := []store.Chunk{chunkWithEmbedding(1, []float32{1, 2, 3})}
	r := NewVectorRetriever(chunks, &fakeEmbedder{vector: []float32{1, 2}})

	if _, err := r.Retrieve(context.Background(), "q", 4); err == nil {
		t.Error("expected an error for mismatched embedding dimensions")
	}
}
