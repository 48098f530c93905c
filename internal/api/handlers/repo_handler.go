package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aakhterov/github-repo-analyzer/internal/services"
)

type RepoHandler struct {
	ingest *services.IngestService
	runner *services.Runner
}

func NewRepoHandler(ingest *services.IngestService, runner *services.Runner) *RepoHandler {
	return &RepoHandler{ingest: ingest, runner: runner}
}

type processRepoRequest struct {
	AssistantID string `json:"assistant_id"`
	URL         string `json:"url"`
}

type processRepoResponse struct {
	RepoID   string `json:"repo_id"`
	ThreadID string `json:"thread_id"`
	User     string `json:"user"`
	Repo     string `json:"repo"`
}

type checkRepoRequest struct {
	ThreadID string `json:"thread_id"`
}

type checkRepoResponse struct {
	Status string `json:"status"`
}

// Process registers the repository and kicks off ingestion in the
// background. The response carries the thread id to poll with.
func (h *RepoHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRepoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AssistantID == "" {
		writeBadRequest(w, "assistant_id is required")
		return
	}
	if req.URL == "" {
		writeBadRequest(w, "url is required")
		return
	}

	repo, err := h.ingest.CreateRepoAndThread(r.Context(), req.AssistantID, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	// Ingestion outlives the request; a duplicate submission for a repo
	// still in flight is refused inside ProcessRepo and only logged.
	taskName := fmt.Sprintf("ingest %s/%s", repo.Owner, repo.Name)
	h.runner.Go(context.Background(), taskName, func(ctx context.Context) error {
		return h.ingest.ProcessRepo(ctx, repo)
	})

	writeJSON(w, http.StatusOK, processRepoResponse{
		RepoID:   repo.ID,
		ThreadID: repo.ThreadID,
		User:     repo.Owner,
		Repo:     repo.Name,
	})
}

// Check reports the ingestion status behind a thread id.
func (h *RepoHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRepoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ThreadID == "" {
		writeBadRequest(w, "thread_id is required")
		return
	}

	status, err := h.ingest.CheckRepoStatus(r.Context(), req.ThreadID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkRepoResponse{Status: status})
}
