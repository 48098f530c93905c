package services

import (
	"context"

	"github.com/aakhterov/github-repo-analyzer/internal/core"
)

// AssistantService creates assistants at most once per name.
type AssistantService struct {
	store     core.Store
	assistant core.Assistant
}

func NewAssistantService(store core.Store, assistant core.Assistant) *AssistantService {
	return &AssistantService{store: store, assistant: assistant}
}

// Create returns the id of the assistant with the given name, creating
// it remotely and persisting the mapping on first use.
func (s *AssistantService) Create(ctx context.Context, name string) (string, error) {
	assistantID, err := s.store.GetAssistantIDByName(ctx, name)
	if err != nil {
		return "", err
	}
	if assistantID != "" {
		return assistantID, nil
	}

	assistantID, err = s.assistant.CreateAssistant(ctx, name)
	if err != nil {
		return "", err
	}
	if err := s.store.CreateAssistant(ctx, assistantID, name); err != nil {
		return "", err
	}
	return assistantID, nil
}
