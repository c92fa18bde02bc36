package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regassist.in/nbfc-chatbot/internal/api"
	"regassist.in/nbfc-chatbot/internal/config"
	"regassist.in/nbfc-chatbot/internal/core"
	"regassist.in/nbfc-chatbot/internal/ingest"
	"regassist.in/nbfc-chatbot/internal/mock"
	"regassist.in/nbfc-chatbot/internal/store"
)

func main() {
	config.LoadConfig()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	ingestFlag := flag.Bool("ingest", false, "Download and ingest the source document, then exit")
	flag.Parse()

	ctx := context.Background()

	if config.AppConfig.RetrieverBackend == "mock" {
		backend, topics, err := buildMockBackend()
		if err != nil {
			log.Fatalf("Failed to build mock backend: %v", err)
		}
		log.Println("Running with the mock backend; answers come from the canned topic table")
		serve(api.NewAPIHandler(backend, topics))
		return
	}

	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	llmService, err := core.NewLLMService(ctx, config.AppConfig.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	var chromaRetriever *core.ChromaRetriever
	if config.AppConfig.RetrieverBackend == "chroma" {
		chromaRetriever, err = core.NewChromaRetriever(ctx, config.AppConfig.ChromaURL, config.AppConfig.ChromaCollection, llmService)
		if err != nil {
			log.Fatalf("Failed to connect to chroma: %v", err)
		}
		defer chromaRetriever.Close()
	}

	if *ingestFlag {
		if err := runIngestion(ctx, llmService, dbStore, chromaRetriever); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		os.Exit(0)
	}

	synth := core.NewSynthesizer(llmService)

	var backend core.Backend
	switch config.AppConfig.RetrieverBackend {
	case "chroma":
		backend = core.NewChromaBackend(chromaRetriever, synth, config.AppConfig.TopK)
	case "local":
		chunks, err := dbStore.LoadChunks()
		if err != nil {
			log.Fatalf("Failed to load chunks (run with -ingest first?): %v", err)
		}
		retriever := core.NewVectorRetriever(chunks, llmService)
		log.Printf("Loaded %d chunks into the in-memory index", retriever.Size())
		backend = core.NewLocalBackend(retriever, synth, config.AppConfig.TopK)
	default:
		log.Fatalf("Unknown retriever backend %q (want local, chroma or mock)", config.AppConfig.RetrieverBackend)
	}

	serve(api.NewAPIHandler(backend, nil))
}

func buildMockBackend() (*mock.Backend, []string, error) {
	if path := config.AppConfig.TopicsPath; path != "" {
		topics, err := mock.TopicsFromFile(path)
		if err != nil {
			return nil, nil, err
		}
		backend, err := mock.NewBackendWithTopics(topics)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Topics(), nil
	}
	backend, err := mock.NewBackend()
	if err != nil {
		return nil, nil, err
	}
	return backend, backend.Topics(), nil
}

func runIngestion(ctx context.Context, llmService *core.LLMService, dbStore *store.SQLiteStore, sink *core.ChromaRetriever) error {
	docPath := config.AppConfig.DocumentPath
	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		log.Printf("Document not found at %s, downloading from %s", docPath, config.AppConfig.DocumentURL)
		if err := ingest.DownloadDocument(ctx, config.AppConfig.DocumentURL, docPath); err != nil {
			return err
		}
	}

	processor := ingest.NewProcessor(llmService, dbStore)
	if sink != nil {
		processor = processor.WithChromaSink(sink)
	}
	count, err := processor.Run(ctx, docPath, "RBI NBFC Master Direction")
	if err != nil {
		return err
	}
	log.Printf("Ingestion complete. Stored %d chunks.", count)
	return nil
}

func serve(apiHandler *api.APIHandler) {
	router := api.NewRouter(apiHandler)
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting gracefully")
}
