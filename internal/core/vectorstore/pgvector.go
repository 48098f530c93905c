// Package vectorstore holds the similarity-search backends. Both store
// chunk text and metadata next to the embedding so retrieval needs no
// second lookup.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/aakhterov/github-repo-analyzer/internal/core"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

// PgVectorStore keeps every collection in one pgvector-typed table,
// discriminated by a collection column. It shares the relational pool.
type PgVectorStore struct {
	db    *sql.DB
	embed core.EmbeddingProvider
}

func NewPgVectorStore(db *sql.DB, embed core.EmbeddingProvider) *PgVectorStore {
	return &PgVectorStore{db: db, embed: embed}
}

// EnsureCollection is a no-op: the embeddings table is created at
// bootstrap and collections are just values in its collection column.
func (s *PgVectorStore) EnsureCollection(ctx context.Context, collection string) error {
	return nil
}

func (s *PgVectorStore) ResetCollection(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE collection = $1`, collection)
	if err != nil {
		return fmt.Errorf("reset collection %s: %w", collection, err)
	}
	return nil
}

// AddDocuments embeds the chunk texts and inserts them in one
// transaction. Returns the generated chunk ids.
func (s *PgVectorStore) AddDocuments(ctx context.Context, collection string, docs []models.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := s.embed.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("got %d embeddings for %d documents", len(vectors), len(docs))
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO embeddings (id, collection, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(docs))
	for i, d := range docs {
		id := uuid.NewString()
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			id, collection, d.Content, meta, pgvector.NewVector(vectors[i]),
		); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Query embeds the query text and returns the top-k chunks whose cosine
// similarity clears the threshold.
func (s *PgVectorStore) Query(ctx context.Context, collection, query string, k int, scoreThreshold float32) ([]models.ScoredDocument, error) {
	vectors, err := s.embed.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d embeddings for query", len(vectors))
	}
	vec := pgvector.NewVector(vectors[0])

	const q = `
		SELECT content, metadata, 1 - (embedding <=> $2) AS score
		FROM embeddings
		WHERE collection = $1 AND 1 - (embedding <=> $2) >= $3
		ORDER BY embedding <=> $2
		LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, q, collection, vec, scoreThreshold, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoredDocument
	for rows.Next() {
		var (
			doc  models.ScoredDocument
			meta []byte
		)
		if err := rows.Scan(&doc.Content, &meta, &doc.Score); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

var _ core.VectorStore = (*PgVectorStore)(nil)
