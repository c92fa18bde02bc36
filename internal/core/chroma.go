package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"

	"regassist.in/nbfc-chatbot/internal/store"
)

// ChromaRetriever queries a Chroma collection for relevant chunks. Chroma
// does the ranking server-side and this client does not surface similarity
// scores, which is why backends built on it use the source-count
// confidence policy.
type ChromaRetriever struct {
	client     chromago.Client
	collection chromago.Collection
	embedder   Embedder
}

// NewChromaRetriever connects to a Chroma server and gets or creates the
// named collection.
func NewChromaRetriever(ctx context.Context, baseURL, collectionName string, embedder Embedder) (*ChromaRetriever, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "NBFC regulatory document chunks"),
			),
		),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get or create collection %q: %w", collectionName, err)
	}

	return &ChromaRetriever{client: client, collection: collection, embedder: embedder}, nil
}

func (r *ChromaRetriever) Close() {
	if r.client != nil {
		if err := r.client.Close(); err != nil {
			log.Printf("Error closing chroma client: %v", err)
		}
	}
}

// AddChunks writes already-embedded chunks into the collection.
func (r *ChromaRetriever) AddChunks(ctx context.Context, chunks []store.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %d has no embedding", chunk.ID)
		}
		embedding := embeddings.NewEmbeddingFromFloat32(chunk.Embedding)
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", chunk.Source),
			chromago.NewIntAttribute("page", int64(chunk.Page)),
			chromago.NewIntAttribute("chunk_id", chunk.ID),
		)
		err := r.collection.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), chunk.ID))),
			chromago.WithTexts(chunk.Content),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %d to chroma: %w", chunk.ID, err)
		}
	}
	return nil
}

// Retrieve embeds the query and asks Chroma for the nearest chunks. The
// returned results carry no scores.
func (r *ChromaRetriever) Retrieve(ctx context.Context, query string, topK int) ([]store.RetrievalResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryEmbedding, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	embedding := embeddings.NewEmbeddingFromFloat32(queryEmbedding)

	results, err := r.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chroma: %w", err)
	}

	var retrieved []store.RetrievalResult
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(documentGroups) == 0 {
		return nil, nil
	}
	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		chunk := store.Chunk{Content: doc.ContentString()}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			applyChromaMetadata(&chunk, metadataGroups[0][i])
		}
		retrieved = append(retrieved, store.RetrievalResult{Chunk: chunk})
	}
	return retrieved, nil
}

// applyChromaMetadata copies source/page/chunk_id attributes back onto the
// chunk. DocumentMetadata has no public accessor for arbitrary values, so
// the JSON round-trip is the supported way to read it back.
func applyChromaMetadata(chunk *store.Chunk, metadata chromago.DocumentMetadata) {
	if metadata == nil {
		return
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("Warning: could not marshal chroma metadata: %v", err)
		return
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("Warning: could not unmarshal chroma metadata: %v", err)
		return
	}
	if source, ok := metadataMap["source"].(string); ok {
		chunk.Source = source
	}
	if page, ok := metadataMap["page"].(float64); ok {
		chunk.Page = int(page)
	}
	if id, ok := metadataMap["chunk_id"].(float64); ok {
		chunk.ID = int64(id)
	}
}
