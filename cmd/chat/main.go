// Command chat runs the chatbot as an interactive terminal session.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"regassist.in/nbfc-chatbot/internal/config"
	"regassist.in/nbfc-chatbot/internal/core"
	"regassist.in/nbfc-chatbot/internal/mock"
	"regassist.in/nbfc-chatbot/internal/store"
	"regassist.in/nbfc-chatbot/internal/tui"
)

func main() {
	demoFlag := flag.Bool("demo", false, "Answer from the canned topic table instead of the document index")
	flag.Parse()

	// -demo must win before LoadConfig enforces the API key requirement.
	if *demoFlag {
		os.Setenv("RETRIEVER_BACKEND", "mock")
	}
	config.LoadConfig()

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile("chat.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	backend, summary, cleanup, err := buildBackend(*demoFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	bot := core.NewChatbot(backend)
	program := tea.NewProgram(tui.New(bot, summary), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chat: %v\n", err)
		os.Exit(1)
	}
}

func buildBackend(demo bool) (core.Backend, string, func(), error) {
	noop := func() {}

	if demo || config.AppConfig.RetrieverBackend == "mock" {
		backend, err := mock.NewBackend()
		if err != nil {
			return nil, "", noop, err
		}
		return backend, "Demo mode. Topics: " + backend.TopicSummary(), noop, nil
	}

	ctx := context.Background()

	llmService, err := core.NewLLMService(ctx, config.AppConfig.GeminiAPIKey)
	if err != nil {
		return nil, "", noop, err
	}

	synth := core.NewSynthesizer(llmService)

	if config.AppConfig.RetrieverBackend == "chroma" {
		chromaRetriever, err := core.NewChromaRetriever(ctx, config.AppConfig.ChromaURL, config.AppConfig.ChromaCollection, llmService)
		if err != nil {
			llmService.Close()
			return nil, "", noop, err
		}
		cleanup := func() {
			chromaRetriever.Close()
			llmService.Close()
		}
		return core.NewChromaBackend(chromaRetriever, synth, config.AppConfig.TopK),
			"Answering from Chroma collection " + config.AppConfig.ChromaCollection, cleanup, nil
	}

	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		llmService.Close()
		return nil, "", noop, err
	}
	chunks, err := dbStore.LoadChunks()
	if err != nil {
		dbStore.Close()
		llmService.Close()
		return nil, "", noop, fmt.Errorf("failed to load chunks (run the server with -ingest first?): %w", err)
	}
	dbStore.Close() // chunks are cached in memory from here on

	retriever := core.NewVectorRetriever(chunks, llmService)
	cleanup := func() { llmService.Close() }
	return core.NewLocalBackend(retriever, synth, config.AppConfig.TopK),
		fmt.Sprintf("Answering from %d indexed document chunks", retriever.Size()), cleanup, nil
}
