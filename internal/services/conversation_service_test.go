package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

func newConversationFixture(t *testing.T) (*ConversationService, *fakeStore, *fakeAssistant, *models.Repo) {
	t.Helper()
	store := newFakeStore()
	vector := newFakeVector()
	assistant := newFakeAssistant()

	repo := &models.Repo{
		Owner:       "octocat",
		Name:        "hello",
		Collection:  "octocat_hello",
		AssistantID: "asst_1",
		ThreadID:    "thread_1",
		Status:      models.StatusCompleted,
	}
	_, err := store.CreateRepo(context.Background(), repo)
	require.NoError(t, err)
	require.NoError(t, store.CreateThread(context.Background(), "thread_1", models.StatusCompleted))

	return NewConversationService(store, vector, assistant), store, assistant, repo
}

func TestSend_RepoNotReady(t *testing.T) {
	svc, store, _, repo := newConversationFixture(t)
	ctx := context.Background()

	require.NoError(t, store.UpdateRepoStatus(ctx, repo.ID, models.StatusProcessing))

	_, err := svc.Send(ctx, "what does this repo do?", "asst_1", "thread_1")
	require.ErrorIs(t, err, ErrRepoNotReady)
}

func TestSend_UnknownThread(t *testing.T) {
	svc, _, _, _ := newConversationFixture(t)

	_, err := svc.Send(context.Background(), "hello", "asst_1", "thread_missing")
	require.ErrorIs(t, err, ErrRepoNotReady)
}

func TestSend_CompletesThreadWithMessageID(t *testing.T) {
	svc, store, assistant, _ := newConversationFixture(t)
	ctx := context.Background()

	aiMessageID, err := svc.Send(ctx, "what does this repo do?", "asst_1", "thread_1")
	require.NoError(t, err)
	assert.Equal(t, "msg_1", aiMessageID)
	assert.Equal(t, "octocat_hello", assistant.lastCollection)

	thread, err := store.GetThreadByID(ctx, "thread_1")
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.Equal(t, models.StatusCompleted, thread.Status)
	assert.Equal(t, "msg_1", thread.AIMessageID)
}

func TestResult_UnknownThread(t *testing.T) {
	svc, _, _, _ := newConversationFixture(t)

	_, err := svc.Result(context.Background(), "thread_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResult_ProcessingHasNoMessage(t *testing.T) {
	svc, store, _, _ := newConversationFixture(t)
	ctx := context.Background()

	require.NoError(t, store.UpdateThreadStatusAndAIMessageID(ctx, "thread_1", models.StatusProcessing, ""))

	result, err := svc.Result(ctx, "thread_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, result.Status)
	assert.Empty(t, result.Message)
}

func TestResult_CompletedReturnsMessage(t *testing.T) {
	svc, store, assistant, _ := newConversationFixture(t)
	ctx := context.Background()

	assistant.resultByMessage["msg_1"] = "This repository is a greeting service."
	require.NoError(t, store.UpdateThreadStatusAndAIMessageID(ctx, "thread_1", models.StatusCompleted, "msg_1"))

	result, err := svc.Result(ctx, "thread_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, "This repository is a greeting service.", result.Message)
}
