package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakhterov/github-repo-analyzer/internal/core/github"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
	"github.com/aakhterov/github-repo-analyzer/internal/services"
)

// In-memory collaborators; just enough behavior to drive the handlers.

type memStore struct {
	mu         sync.Mutex
	assistants map[string]string
	repos      []*models.Repo
	threads    map[string]*models.Thread
}

func newMemStore() *memStore {
	return &memStore{assistants: map[string]string{}, threads: map[string]*models.Thread{}}
}

func (s *memStore) CreateAssistant(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assistants[name] = id
	return nil
}

func (s *memStore) GetAssistantIDByName(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assistants[name], nil
}

func (s *memStore) CreateRepo(_ context.Context, repo *models.Repo) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo.ID = fmt.Sprintf("repo-%d", len(s.repos)+1)
	s.repos = append(s.repos, repo)
	return repo.ID, nil
}

func (s *memStore) GetRepoByOwnerAndName(_ context.Context, owner, name string) (*models.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.Owner == owner && r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetRepoStatusByThreadID(_ context.Context, threadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.ThreadID == threadID {
			return r.Status, nil
		}
	}
	return "", nil
}

func (s *memStore) GetCollectionByAssistantAndThread(_ context.Context, assistantID, threadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.AssistantID == assistantID && r.ThreadID == threadID {
			return r.Collection, nil
		}
	}
	return "", nil
}

func (s *memStore) UpdateRepoStatus(_ context.Context, repoID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repos {
		if r.ID == repoID {
			r.Status = status
			return nil
		}
	}
	return fmt.Errorf("repo not found: %s", repoID)
}

func (s *memStore) CreateThread(_ context.Context, threadID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = &models.Thread{ID: threadID, Status: status}
	return nil
}

func (s *memStore) GetThreadByID(_ context.Context, threadID string) (*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) UpdateThreadStatusAndAIMessageID(_ context.Context, threadID, status, aiMessageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return fmt.Errorf("thread not found: %s", threadID)
	}
	t.Status = status
	t.AIMessageID = aiMessageID
	return nil
}

type memVector struct{ mu sync.Mutex }

func (v *memVector) EnsureCollection(context.Context, string) error { return nil }
func (v *memVector) ResetCollection(context.Context, string) error  { return nil }
func (v *memVector) AddDocuments(_ context.Context, _ string, docs []models.Document) ([]string, error) {
	return make([]string, len(docs)), nil
}
func (v *memVector) Query(context.Context, string, string, int, float32) ([]models.ScoredDocument, error) {
	return nil, nil
}

type memAssistant struct {
	mu      sync.Mutex
	counter int
}

func (a *memAssistant) CreateAssistant(_ context.Context, name string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counter++
	return fmt.Sprintf("asst_%d", a.counter), nil
}

func (a *memAssistant) CreateThread(_ context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counter++
	return fmt.Sprintf("thread_%d", a.counter), nil
}

func (a *memAssistant) MakeConversation(_ context.Context, _, _, _, _ string) (string, error) {
	return "msg_1", nil
}

func (a *memAssistant) GetConversationResult(_ context.Context, _, _ string) (string, error) {
	return "It is a greeting service.", nil
}

type memGitHub struct{}

func (memGitHub) GetRepoMetadata(_, _ string) (*github.RepoMetadata, error) {
	return &github.RepoMetadata{DefaultBranch: "main"}, nil
}
func (memGitHub) GetBranchSHA(_, _, _ string) (string, error) { return "abc123", nil }
func (memGitHub) GetRepoTree(_, _, _ string) (*github.Tree, error) {
	return &github.Tree{Entries: []github.TreeEntry{{Path: "README.md", Type: "blob"}}}, nil
}
func (memGitHub) DownloadFile(_, _, _, _ string) ([]byte, error) {
	return []byte("# Hello"), nil
}

type memSplitter struct{}

func (memSplitter) Split(path, content string, metadata map[string]any) ([]models.Document, error) {
	return []models.Document{{Content: content, Metadata: map[string]any{"filename": path}}}, nil
}

type fixture struct {
	store  *memStore
	runner *services.Runner

	assistantH    *AssistantHandler
	repoH         *RepoHandler
	conversationH *ConversationHandler
}

func newFixture() *fixture {
	store := newMemStore()
	vector := &memVector{}
	assistant := &memAssistant{}
	runner := services.NewRunner()

	ingest := services.NewIngestService(store, vector, assistant, memGitHub{}, memSplitter{}, 2)
	conv := services.NewConversationService(store, vector, assistant)
	asst := services.NewAssistantService(store, assistant)

	return &fixture{
		store:         store,
		runner:        runner,
		assistantH:    NewAssistantHandler(asst),
		repoH:         NewRepoHandler(ingest, runner),
		conversationH: NewConversationHandler(conv, runner),
	}
}

func post(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAssistantCreate_MissingName(t *testing.T) {
	f := newFixture()

	rec := post(t, f.assistantH.Create, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "name")
}

func TestAssistantCreate_OK(t *testing.T) {
	f := newFixture()

	rec := post(t, f.assistantH.Create, map[string]any{"name": "repo-analyzer"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["assistant_id"])
}

func TestRepoProcess_InvalidURL(t *testing.T) {
	f := newFixture()

	rec := post(t, f.repoH.Process, map[string]any{
		"assistant_id": "asst_1",
		"url":          "https://github.com/octocat/hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "URL")
}

func TestRepoProcess_MissingFields(t *testing.T) {
	f := newFixture()

	rec := post(t, f.repoH.Process, map[string]any{"url": "https://github.com/octocat/hello.git"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, f.repoH.Process, map[string]any{"assistant_id": "asst_1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRepoProcess_ThenCheckCompletes(t *testing.T) {
	f := newFixture()

	rec := post(t, f.repoH.Process, map[string]any{
		"assistant_id": "asst_1",
		"url":          "https://github.com/octocat/hello.git",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	threadID, _ := body["thread_id"].(string)
	require.NotEmpty(t, threadID)
	assert.Equal(t, "octocat", body["user"])
	assert.Equal(t, "hello", body["repo"])

	f.runner.Wait()

	rec = post(t, f.repoH.Check, map[string]any{"thread_id": threadID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusCompleted, decode(t, rec)["status"])
}

func TestRepoCheck_UnknownThreadIsEmptyStatus(t *testing.T) {
	f := newFixture()

	rec := post(t, f.repoH.Check, map[string]any{"thread_id": "thread_missing"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode(t, rec)["status"])
}

func TestConversationMessage_RepoNotReady(t *testing.T) {
	f := newFixture()

	rec := post(t, f.repoH.Process, map[string]any{
		"assistant_id": "asst_1",
		"url":          "https://github.com/octocat/hello.git",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	threadID := decode(t, rec)["thread_id"].(string)

	// Force the repo back to processing regardless of ingestion timing.
	f.runner.Wait()
	repo, err := f.store.GetRepoByOwnerAndName(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateRepoStatus(context.Background(), repo.ID, models.StatusProcessing))

	rec = post(t, f.conversationH.Message, map[string]any{
		"message":      "what is this?",
		"assistant_id": "asst_1",
		"thread_id":    threadID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "not ready")
}

func TestConversationFlow(t *testing.T) {
	f := newFixture()

	rec := post(t, f.repoH.Process, map[string]any{
		"assistant_id": "asst_1",
		"url":          "https://github.com/octocat/hello.git",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	threadID := decode(t, rec)["thread_id"].(string)

	f.runner.Wait()

	rec = post(t, f.conversationH.Message, map[string]any{
		"message":      "what is this repo about?",
		"assistant_id": "asst_1",
		"thread_id":    threadID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusProcessing, decode(t, rec)["status"])

	f.runner.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = post(t, f.conversationH.Result, map[string]any{"thread_id": threadID})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		if body["status"] == models.StatusCompleted {
			assert.Equal(t, "It is a greeting service.", body["message"])
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("conversation never completed: %v", body)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConversationResult_UnknownThread(t *testing.T) {
	f := newFixture()

	rec := post(t, f.conversationH.Result, map[string]any{"thread_id": "thread_missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationMessage_MissingFields(t *testing.T) {
	f := newFixture()

	rec := post(t, f.conversationH.Message, map[string]any{"assistant_id": "a", "thread_id": "t"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "message")
}
