package handlers

import (
	"net/http"

	"github.com/aakhterov/github-repo-analyzer/internal/services"
)

type AssistantHandler struct {
	assistants *services.AssistantService
}

func NewAssistantHandler(assistants *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistants: assistants}
}

type createAssistantRequest struct {
	Name string `json:"name"`
}

type createAssistantResponse struct {
	AssistantID string `json:"assistant_id"`
}

// Create returns the id of the named assistant, creating it on first use.
func (h *AssistantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssistantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	assistantID, err := h.assistants.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createAssistantResponse{AssistantID: assistantID})
}
