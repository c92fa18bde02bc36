package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tmc/langchaingo/textsplitter"

	"regassist.in/nbfc-chatbot/internal/core"
	"regassist.in/nbfc-chatbot/internal/store"
)

const (
	// Chunking parameters tuned for regulatory prose: paragraphs are
	// long, and the overlap keeps clause references intact across
	// chunk boundaries.
	chunkSize    = 800
	chunkOverlap = 100

	// Pause between embedding calls so ingestion stays inside the
	// embedding API rate limit.
	embedInterval = 40 * time.Millisecond
)

// ChunkWriter is the destination for embedded chunks. *store.SQLiteStore
// satisfies it.
type ChunkWriter interface {
	ReplaceChunks(chunks []store.Chunk) error
}

// Processor runs the full ingestion pipeline for one document.
type Processor struct {
	embedder core.Embedder
	writer   ChunkWriter
	sink     *core.ChromaRetriever // optional mirror
}

func NewProcessor(embedder core.Embedder, writer ChunkWriter) *Processor {
	return &Processor{embedder: embedder, writer: writer}
}

// WithChromaSink mirrors the embedded chunks into a Chroma collection in
// addition to the primary store.
func (p *Processor) WithChromaSink(sink *core.ChromaRetriever) *Processor {
	p.sink = sink
	return p
}

// Run ingests the document at path under the given source label. The
// previous chunk set is replaced atomically; a failed run leaves the
// store untouched.
func (p *Processor) Run(ctx context.Context, path, source string) (int, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return 0, fmt.Errorf("failed to extract document text: %w", err)
	}
	log.Printf("Extracted %d pages from %s", len(pages), path)

	chunks, err := splitPages(pages, source)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document produced no chunks")
	}
	log.Printf("Split document into %d chunks, embedding...", len(chunks))

	ticker := time.NewTicker(embedInterval)
	defer ticker.Stop()
	for i := range chunks {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
		embedding, err := p.embedder.GetEmbedding(ctx, chunks[i].Content)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d: %w", i+1, err)
		}
		chunks[i].Embedding = embedding
		if (i+1)%50 == 0 {
			log.Printf("Embedded %d/%d chunks", i+1, len(chunks))
		}
	}

	if err := p.writer.ReplaceChunks(chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	if p.sink != nil {
		if err := p.sink.AddChunks(ctx, chunks); err != nil {
			return 0, fmt.Errorf("failed to mirror chunks to chroma: %w", err)
		}
	}
	return len(chunks), nil
}

// splitPages chunks each page separately so every chunk keeps the page
// number it came from.
func splitPages(pages []Page, source string) ([]store.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []store.Chunk
	for _, page := range pages {
		parts, err := splitter.SplitText(page.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to split page %d: %w", page.Number, err)
		}
		for _, part := range parts {
			chunks = append(chunks, store.Chunk{
				ID:      int64(len(chunks) + 1),
				Content: part,
				Source:  source,
				Page:    page.Number,
			})
		}
	}
	return chunks, nil
}
