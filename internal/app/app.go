package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aakhterov/github-repo-analyzer/internal/config"
	"github.com/aakhterov/github-repo-analyzer/internal/core"
	"github.com/aakhterov/github-repo-analyzer/internal/core/assistant"
	db "github.com/aakhterov/github-repo-analyzer/internal/core/database"
	"github.com/aakhterov/github-repo-analyzer/internal/core/github"
	"github.com/aakhterov/github-repo-analyzer/internal/core/llm"
	"github.com/aakhterov/github-repo-analyzer/internal/core/splitter"
	"github.com/aakhterov/github-repo-analyzer/internal/core/vectorstore"
	"github.com/aakhterov/github-repo-analyzer/internal/services"
)

// App owns every wired component and their shutdown order.
type App struct {
	DBClient *db.DatabaseClient
	Runner   *services.Runner
	Server   *Server

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	a := &App{DBClient: dbClient}

	embedder, err := a.buildEmbedder(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	vector, err := a.buildVectorStore(cfg, dbClient, embedder)
	if err != nil {
		a.Close()
		return nil, err
	}

	assistantClient := assistant.NewOpenAIAssistant(
		cfg.OpenAIAPIKey, cfg.ConversationModel, vector, cfg.SearchK, float32(cfg.ScoreThreshold))

	split, err := splitter.New(
		splitter.Options{ChunkSize: cfg.CodeChunkSize, ChunkOverlap: cfg.CodeChunkOverlap},
		splitter.Options{ChunkSize: cfg.TextChunkSize, ChunkOverlap: cfg.TextChunkOverlap},
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	gh := github.NewClient(cfg.GitHubToken)
	runner := services.NewRunner()

	ingestSvc := services.NewIngestService(dbClient, vector, assistantClient, gh, split, 8)
	conversationSvc := services.NewConversationService(dbClient, vector, assistantClient)
	assistantSvc := services.NewAssistantService(dbClient, assistantClient)

	a.Runner = runner
	a.Server = NewServer(cfg, assistantSvc, ingestSvc, conversationSvc, runner)
	return a, nil
}

func (a *App) buildEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "gemini":
		embedder, err := llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
		}
		a.closers = append(a.closers, embedder.Close)
		return embedder, nil
	case "openai", "":
		return llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbedModel), nil
	default:
		return nil, fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}
}

func (a *App) buildVectorStore(cfg *config.Config, dbClient *db.DatabaseClient, embedder core.EmbeddingProvider) (core.VectorStore, error) {
	switch cfg.VectorBackend {
	case "qdrant":
		store, err := vectorstore.NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort, embedder, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case "pgvector", "":
		return vectorstore.NewPgVectorStore(dbClient.DB(), embedder), nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("WARN: close: %v", err)
		}
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
