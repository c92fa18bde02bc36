package core

import (
	"context"
	"fmt"
	"strings"

	"regassist.in/nbfc-chatbot/internal/store"
)

// Generator produces a single completion for a prompt. Implemented by
// LLMService in production and by fakes in tests.
type Generator interface {
	GetAnswer(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns a question plus retrieved context into the final
// answer and its source citations.
type Synthesizer struct {
	llm Generator
}

func NewSynthesizer(llm Generator) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize joins the chunk contents in retrieval-rank order, asks the
// model once, and shapes the citations. The context block restricts the
// model to the supplied chunks only.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []store.Chunk) (string, []store.SourceCitation, error) {
	contents := make([]string, len(chunks))
	sources := make([]store.SourceCitation, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
		sources[i] = chunk.Citation()
	}

	prompt := buildPrompt(question, contents)
	answer, err := s.llm.GetAnswer(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, sources, nil
}

// buildPrompt assembles the instruction prompt around the context block.
func buildPrompt(question string, contents []string) string {
	var sb strings.Builder
	sb.WriteString("Based on the following context from RBI documents about NBFCs, answer the question accurately and comprehensively.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(contents, "\n\n"))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("- Answer based only on the provided context\n")
	sb.WriteString("- If the context doesn't contain sufficient information, say so\n")
	sb.WriteString("- Provide specific details and references when available\n")
	sb.WriteString("- Be precise and professional in your response\n")
	sb.WriteString("\nAnswer:")
	return sb.String()
}
