package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aakhterov/github-repo-analyzer/internal/models"
	"github.com/aakhterov/github-repo-analyzer/internal/services"
)

type ConversationHandler struct {
	conversations *services.ConversationService
	runner        *services.Runner
}

func NewConversationHandler(conversations *services.ConversationService, runner *services.Runner) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, runner: runner}
}

type messageRequest struct {
	Message     string `json:"message"`
	AssistantID string `json:"assistant_id"`
	ThreadID    string `json:"thread_id"`
}

type messageResponse struct {
	Status string `json:"status"`
}

type resultRequest struct {
	ThreadID string `json:"thread_id"`
}

// Message checks the repository is ready, then runs the conversation
// turn in the background. Poll /conversation/result for the reply.
func (h *ConversationHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeBadRequest(w, "message is required")
		return
	}
	if req.AssistantID == "" {
		writeBadRequest(w, "assistant_id is required")
		return
	}
	if req.ThreadID == "" {
		writeBadRequest(w, "thread_id is required")
		return
	}

	// Readiness is checked here so a not-ready repo fails the request
	// instead of a background task nobody can observe.
	if err := h.conversations.CheckReady(r.Context(), req.ThreadID); err != nil {
		writeError(w, err)
		return
	}

	taskName := fmt.Sprintf("conversation %s", req.ThreadID)
	h.runner.Go(context.Background(), taskName, func(ctx context.Context) error {
		_, err := h.conversations.Send(ctx, req.Message, req.AssistantID, req.ThreadID)
		return err
	})

	writeJSON(w, http.StatusOK, messageResponse{Status: models.StatusProcessing})
}

// Result reports the turn status and the assistant's reply once done.
func (h *ConversationHandler) Result(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ThreadID == "" {
		writeBadRequest(w, "thread_id is required")
		return
	}

	result, err := h.conversations.Result(r.Context(), req.ThreadID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
