package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aakhterov/github-repo-analyzer/internal/config"
	"github.com/aakhterov/github-repo-analyzer/internal/core"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB exposes the underlying pool so the pgvector store can share it.
func (c *DatabaseClient) DB() *sql.DB {
	return c.db
}

// Assistants

func (c *DatabaseClient) CreateAssistant(ctx context.Context, assistantID, name string) error {
	const q = `
		INSERT INTO assistants (assistant_id, name)
		VALUES ($1, $2)
	`
	_, err := c.db.ExecContext(ctx, q, assistantID, name)
	return err
}

func (c *DatabaseClient) GetAssistantIDByName(ctx context.Context, name string) (string, error) {
	const q = `
		SELECT assistant_id FROM assistants WHERE name = $1
	`
	var id string
	err := c.db.QueryRowContext(ctx, q, name).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Repositories

func (c *DatabaseClient) CreateRepo(ctx context.Context, repo *models.Repo) (string, error) {
	if repo == nil {
		return "", errors.New("nil repo")
	}
	if repo.ID == "" {
		repo.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO repos (id, owner, name, collection, assistant_id, thread_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := c.db.ExecContext(ctx, q,
		repo.ID, repo.Owner, repo.Name, repo.Collection, repo.AssistantID, repo.ThreadID, repo.Status)
	if err != nil {
		return "", err
	}
	return repo.ID, nil
}

func (c *DatabaseClient) GetRepoByOwnerAndName(ctx context.Context, owner, name string) (*models.Repo, error) {
	const q = `
		SELECT id, owner, name, collection, assistant_id, thread_id, status
		FROM repos
		WHERE owner = $1 AND name = $2
	`
	var r models.Repo
	err := c.db.QueryRowContext(ctx, q, owner, name).Scan(
		&r.ID, &r.Owner, &r.Name, &r.Collection, &r.AssistantID, &r.ThreadID, &r.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *DatabaseClient) GetRepoStatusByThreadID(ctx context.Context, threadID string) (string, error) {
	const q = `
		SELECT status FROM repos WHERE thread_id = $1
	`
	var status string
	err := c.db.QueryRowContext(ctx, q, threadID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

func (c *DatabaseClient) GetCollectionByAssistantAndThread(ctx context.Context, assistantID, threadID string) (string, error) {
	const q = `
		SELECT collection FROM repos WHERE assistant_id = $1 AND thread_id = $2
	`
	var collection string
	err := c.db.QueryRowContext(ctx, q, assistantID, threadID).Scan(&collection)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return collection, nil
}

func (c *DatabaseClient) UpdateRepoStatus(ctx context.Context, repoID, status string) error {
	const q = `
		UPDATE repos
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, repoID, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("repo not found: %s", repoID)
	}
	return nil
}

// Threads

func (c *DatabaseClient) CreateThread(ctx context.Context, threadID, status string) error {
	const q = `
		INSERT INTO threads (thread_id, status)
		VALUES ($1, $2)
	`
	_, err := c.db.ExecContext(ctx, q, threadID, status)
	return err
}

func (c *DatabaseClient) GetThreadByID(ctx context.Context, threadID string) (*models.Thread, error) {
	const q = `
		SELECT thread_id, status, ai_message_id
		FROM threads
		WHERE thread_id = $1
	`
	var t models.Thread
	err := c.db.QueryRowContext(ctx, q, threadID).Scan(&t.ID, &t.Status, &t.AIMessageID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *DatabaseClient) UpdateThreadStatusAndAIMessageID(ctx context.Context, threadID, status, aiMessageID string) error {
	const q = `
		UPDATE threads
		SET status = $2, ai_message_id = $3, updated_at = now()
		WHERE thread_id = $1
	`
	res, err := c.db.ExecContext(ctx, q, threadID, status, aiMessageID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("thread not found: %s", threadID)
	}
	return nil
}

var _ core.Store = (*DatabaseClient)(nil)
