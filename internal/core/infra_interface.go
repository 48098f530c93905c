package core

import (
	"context"

	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

// Store defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
// Lookups that match nothing return zero values with a nil error.
type Store interface {
	CreateAssistant(ctx context.Context, assistantID, name string) error
	GetAssistantIDByName(ctx context.Context, name string) (string, error)

	CreateRepo(ctx context.Context, repo *models.Repo) (id string, err error)
	GetRepoByOwnerAndName(ctx context.Context, owner, name string) (*models.Repo, error)
	GetRepoStatusByThreadID(ctx context.Context, threadID string) (string, error)
	GetCollectionByAssistantAndThread(ctx context.Context, assistantID, threadID string) (string, error)
	UpdateRepoStatus(ctx context.Context, repoID, status string) error

	CreateThread(ctx context.Context, threadID, status string) error
	GetThreadByID(ctx context.Context, threadID string) (*models.Thread, error)
	UpdateThreadStatusAndAIMessageID(ctx context.Context, threadID, status, aiMessageID string) error
}

// VectorStore is a per-repository named collection of embedded chunks.
// EnsureCollection is idempotent (create-or-attach); ResetCollection drops
// all points but keeps the collection usable.
type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string) error
	ResetCollection(ctx context.Context, collection string) error
	AddDocuments(ctx context.Context, collection string, docs []models.Document) ([]string, error)
	Query(ctx context.Context, collection, query string, k int, scoreThreshold float32) ([]models.ScoredDocument, error)
}

// Assistant wraps the hosted assistant/thread/run API.
type Assistant interface {
	CreateAssistant(ctx context.Context, name string) (assistantID string, err error)
	CreateThread(ctx context.Context) (threadID string, err error)
	// MakeConversation posts the user message, runs the assistant, feeds
	// tool-call retrievals from the given collection back into the run and
	// returns the id of the assistant's reply message.
	MakeConversation(ctx context.Context, userMessage, assistantID, threadID, collection string) (aiMessageID string, err error)
	GetConversationResult(ctx context.Context, threadID, aiMessageID string) (message string, err error)
}
