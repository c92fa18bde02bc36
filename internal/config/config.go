package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey     string
	DatabaseURL      string
	HTTPPort         string
	LogLevel         string
	RetrieverBackend string // "local", "chroma" or "mock"
	TopK             int
	DocumentURL      string
	DocumentPath     string
	TopicsPath       string // optional override for the built-in topic table
	ChromaURL        string
	ChromaCollection string
}

var AppConfig Config

// Master Direction on NBFCs, the document this assistant answers from.
const defaultDocumentURL = "https://rbidocs.rbi.org.in/rdocs/notification/PDFs/106MDNBFCS1910202343073E3EF57A4916AA5042911CD8D562.PDF"

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		DatabaseURL:      getEnv("DATABASE_URL", "nbfc_chatbot.db"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		RetrieverBackend: getEnv("RETRIEVER_BACKEND", "local"),
		TopK:             getEnvAsInt("RETRIEVAL_TOP_K", 4),
		DocumentURL:      getEnv("DOCUMENT_URL", defaultDocumentURL),
		DocumentPath:     getEnv("DOCUMENT_PATH", "data/rbi_notification.pdf"),
		TopicsPath:       getEnv("TOPICS_PATH", ""),
		ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "nbfc-guidelines"),
	}

	// The mock backend answers from its canned topic table and needs no API key.
	if AppConfig.RetrieverBackend != "mock" && AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
