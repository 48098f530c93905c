package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	OpenAIAPIKey      string
	GeminiAPIKey      string
	GitHubToken       string
	Port              string
	VectorBackend     string // "pgvector" | "qdrant"
	QdrantHost        string
	QdrantPort        int
	EmbedProvider     string // "openai" | "gemini"
	EmbedModel        string
	EmbedDim          int
	ConversationModel string
	SearchK           int
	ScoreThreshold    float64
	CodeChunkSize     int
	CodeChunkOverlap  int
	TextChunkSize     int
	TextChunkOverlap  int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		Port:              getEnv("PORT", "8080"),
		VectorBackend:     getEnv("VECTOR_BACKEND", "pgvector"),
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvInt("QDRANT_PORT", 6334),
		EmbedProvider:     getEnv("EMBED_PROVIDER", "openai"),
		EmbedModel:        getEnv("EMBED_MODEL", ""), // provider picks its own default
		EmbedDim:          getEnvInt("EMBED_DIM", 1536),
		ConversationModel: getEnv("CONVERSATION_MODEL", "gpt-4o"),
		SearchK:           getEnvInt("SEARCH_K", 4),
		ScoreThreshold:    getEnvFloat("SCORE_THRESHOLD", 0.5),
		CodeChunkSize:     getEnvInt("CODE_CHUNK_SIZE", 400),
		CodeChunkOverlap:  getEnvInt("CODE_CHUNK_OVERLAP", 0),
		TextChunkSize:     getEnvInt("TEXT_CHUNK_SIZE", 1500),
		TextChunkOverlap:  getEnvInt("TEXT_CHUNK_OVERLAP", 400),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %g", key, v, def)
		return def
	}
	return f
}
