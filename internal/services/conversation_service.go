package services

import (
	"context"

	"github.com/aakhterov/github-repo-analyzer/internal/core"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

// ConversationService runs conversation turns against a repository's
// thread. Turns on the same thread are serialized.
type ConversationService struct {
	store     core.Store
	vector    core.VectorStore
	assistant core.Assistant
	threads   *keyedMutex
}

func NewConversationService(store core.Store, vector core.VectorStore, assistant core.Assistant) *ConversationService {
	return &ConversationService{
		store:     store,
		vector:    vector,
		assistant: assistant,
		threads:   newKeyedMutex(),
	}
}

// ConversationResult is what polling a thread yields: the status, and
// the assistant's message once the turn has completed.
type ConversationResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckReady verifies the repository behind the thread is fully
// ingested, so conversation turns only run against a complete index.
func (s *ConversationService) CheckReady(ctx context.Context, threadID string) error {
	repoStatus, err := s.store.GetRepoStatusByThreadID(ctx, threadID)
	if err != nil {
		return err
	}
	if repoStatus != models.StatusCompleted {
		return ErrRepoNotReady
	}
	return nil
}

// Send posts a user message to a thread and runs the assistant on it.
// The repository behind the thread must be fully ingested first.
func (s *ConversationService) Send(ctx context.Context, userMessage, assistantID, threadID string) (string, error) {
	if err := s.CheckReady(ctx, threadID); err != nil {
		return "", err
	}

	s.threads.Lock(threadID)
	defer s.threads.Unlock(threadID)

	collection, err := s.store.GetCollectionByAssistantAndThread(ctx, assistantID, threadID)
	if err != nil {
		return "", err
	}
	if collection == "" {
		return "", ErrNotFound
	}

	if err := s.store.UpdateThreadStatusAndAIMessageID(ctx, threadID, models.StatusProcessing, ""); err != nil {
		return "", err
	}

	if err := s.vector.EnsureCollection(ctx, collection); err != nil {
		return "", err
	}

	aiMessageID, err := s.assistant.MakeConversation(ctx, userMessage, assistantID, threadID, collection)
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateThreadStatusAndAIMessageID(ctx, threadID, models.StatusCompleted, aiMessageID); err != nil {
		return "", err
	}
	return aiMessageID, nil
}

// Result reports the thread status and, once completed, the assistant's
// reply text.
func (s *ConversationService) Result(ctx context.Context, threadID string) (*ConversationResult, error) {
	thread, err := s.store.GetThreadByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, ErrNotFound
	}

	result := &ConversationResult{Status: thread.Status}
	if thread.Status == models.StatusCompleted && thread.AIMessageID != "" {
		message, err := s.assistant.GetConversationResult(ctx, thread.ID, thread.AIMessageID)
		if err != nil {
			return nil, err
		}
		result.Message = message
	}
	return result, nil
}
