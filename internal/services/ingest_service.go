package services

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/aakhterov/github-repo-analyzer/internal/core"
	"github.com/aakhterov/github-repo-analyzer/internal/core/github"
	"github.com/aakhterov/github-repo-analyzer/internal/core/splitter"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

// GitHubClient is the slice of the GitHub API the ingestion needs.
type GitHubClient interface {
	GetRepoMetadata(owner, repo string) (*github.RepoMetadata, error)
	GetBranchSHA(owner, repo, branch string) (string, error)
	GetRepoTree(owner, repo, sha string) (*github.Tree, error)
	DownloadFile(owner, repo, branch, path string) ([]byte, error)
}

// FileSplitter chunks one file into documents ready for embedding.
type FileSplitter interface {
	Split(path, content string, metadata map[string]any) ([]models.Document, error)
}

// buildRepoMetadata keeps the allow-listed repository fields that get
// attached to every chunk, each under a repo_ prefix.
func buildRepoMetadata(meta *github.RepoMetadata) map[string]any {
	return map[string]any{
		"repo_stargazers_count":  meta.StargazersCount,
		"repo_subscribers_count": meta.SubscribersCount,
		"repo_size":              meta.Size,
		"repo_pushed_at":         meta.PushedAt,
		"repo_open_issues":       meta.OpenIssues,
		"repo_created_at":        meta.CreatedAt,
	}
}

// IngestService registers repositories and turns their file trees into
// vector collections.
type IngestService struct {
	store       core.Store
	vector      core.VectorStore
	assistant   core.Assistant
	github      GitHubClient
	splitter    FileSplitter
	inflight    *inflightSet
	concurrency int
}

func NewIngestService(store core.Store, vector core.VectorStore, assistant core.Assistant,
	gh GitHubClient, split FileSplitter, concurrency int) *IngestService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &IngestService{
		store:       store,
		vector:      vector,
		assistant:   assistant,
		github:      gh,
		splitter:    split,
		inflight:    newInflightSet(),
		concurrency: concurrency,
	}
}

// CreateRepoAndThread registers a repository URL under an assistant.
// Re-submitting a known repository reuses its thread and collection and
// flips it back to processing for re-ingestion.
func (s *IngestService) CreateRepoAndThread(ctx context.Context, assistantID, rawURL string) (*models.Repo, error) {
	owner, name, err := ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	repo, err := s.store.GetRepoByOwnerAndName(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	if repo != nil {
		if err := s.store.UpdateRepoStatus(ctx, repo.ID, models.StatusProcessing); err != nil {
			return nil, err
		}
		repo.Status = models.StatusProcessing
	} else {
		threadID, err := s.assistant.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.store.CreateThread(ctx, threadID, models.StatusCompleted); err != nil {
			return nil, err
		}

		repo = &models.Repo{
			Owner:       owner,
			Name:        name,
			Collection:  fmt.Sprintf("%s_%s", owner, name),
			AssistantID: assistantID,
			ThreadID:    threadID,
			Status:      models.StatusProcessing,
		}
		if _, err := s.store.CreateRepo(ctx, repo); err != nil {
			return nil, err
		}
	}

	if err := s.vector.EnsureCollection(ctx, repo.Collection); err != nil {
		return nil, err
	}
	return repo, nil
}

// ProcessRepo downloads and indexes every file of the repository's
// default branch, then marks the repository completed. A second call for
// a repository still being ingested returns ErrAlreadyRunning. Files
// that fail to download, decode or split are skipped, not fatal.
func (s *IngestService) ProcessRepo(ctx context.Context, repo *models.Repo) error {
	key := repo.Owner + "/" + repo.Name
	if !s.inflight.TryAcquire(key) {
		log.Printf("Repo %s is already being processed, skipping duplicate run", key)
		return ErrAlreadyRunning
	}
	defer s.inflight.Release(key)

	log.Printf("Getting repo metadata (owner: %s, repo: %s)...", repo.Owner, repo.Name)
	meta, err := s.github.GetRepoMetadata(repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	log.Printf("Default branch is '%s' (owner: %s, repo: %s)", meta.DefaultBranch, repo.Owner, repo.Name)

	sha, err := s.github.GetBranchSHA(repo.Owner, repo.Name, meta.DefaultBranch)
	if err != nil {
		return err
	}

	tree, err := s.github.GetRepoTree(repo.Owner, repo.Name, sha)
	if err != nil {
		return err
	}

	var paths []string
	for _, entry := range tree.Entries {
		if entry.Type == "blob" {
			paths = append(paths, entry.Path)
		}
	}
	metadata := buildRepoMetadata(meta)

	if err := s.vector.ResetCollection(ctx, repo.Collection); err != nil {
		return err
	}

	log.Printf("Processing %d files...", len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			s.processFile(gctx, repo, meta.DefaultBranch, path, metadata)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.store.UpdateRepoStatus(ctx, repo.ID, models.StatusCompleted); err != nil {
		return err
	}
	log.Printf("Files have been processed (owner: %s, repo: %s)", repo.Owner, repo.Name)
	return nil
}

// processFile handles one blob end to end. Failures only skip the file.
func (s *IngestService) processFile(ctx context.Context, repo *models.Repo, branch, path string, metadata map[string]any) {
	data, err := s.github.DownloadFile(repo.Owner, repo.Name, branch, path)
	if err != nil {
		log.Printf("%s: Skipped (%v)", path, err)
		return
	}

	content, err := splitter.DecodeText(data)
	if err != nil {
		log.Printf("%s: Skipped (%v)", path, err)
		return
	}

	docs, err := s.splitter.Split(path, content, metadata)
	if err != nil {
		log.Printf("%s: Skipped (%v)", path, err)
		return
	}

	log.Printf("%s - %d chunks", path, len(docs))

	if _, err := s.vector.AddDocuments(ctx, repo.Collection, docs); err != nil {
		log.Printf("%s: Skipped (%v)", path, err)
		return
	}

	log.Printf("%s: OK", path)
}

// CheckRepoStatus reports the ingestion status behind a thread id. An
// unknown thread yields an empty status.
func (s *IngestService) CheckRepoStatus(ctx context.Context, threadID string) (string, error) {
	return s.store.GetRepoStatusByThreadID(ctx, threadID)
}
