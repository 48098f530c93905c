package core

import "context"

// EmbeddingProvider turns text into vectors. Implementations exist for
// OpenAI and Gemini; the orchestrator never cares which one is wired.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
