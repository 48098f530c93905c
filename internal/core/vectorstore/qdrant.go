package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/aakhterov/github-repo-analyzer/internal/core"
	"github.com/aakhterov/github-repo-analyzer/internal/models"
)

// QdrantStore maps each repository to its own Qdrant collection with
// cosine distance. Chunk text and metadata live in the point payload.
type QdrantStore struct {
	client *qdrant.Client
	embed  core.EmbeddingProvider
	dim    uint64
}

func NewQdrantStore(host string, port int, embed core.EmbeddingProvider, dim int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	return &QdrantStore{client: client, embed: embed, dim: uint64(dim)}, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}
	return s.createCollection(ctx, collection)
}

// ResetCollection drops and recreates, which is cheaper in Qdrant than
// deleting points one by one.
func (s *QdrantStore) ResetCollection(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, collection); err != nil {
			return fmt.Errorf("delete collection %s: %w", collection, err)
		}
	}
	return s.createCollection(ctx, collection)
}

func (s *QdrantStore) createCollection(ctx context.Context, collection string) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

func (s *QdrantStore) AddDocuments(ctx context.Context, collection string, docs []models.Document) ([]string, error) {
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

	ids := make([]string, 0, len(docs))
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, d := range docs {
		id := uuid.NewString()
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":  d.Content,
				"metadata": string(meta),
			}),
		})
		ids = append(ids, id)
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return ids, nil
}

func (s *QdrantStore) Query(ctx context.Context, collection, query string, k int, scoreThreshold float32) ([]models.ScoredDocument, error) {
	vectors, err := s.embed.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("got %d embeddings for query", len(vectors))
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Limit:          qdrant.PtrOf(uint64(k)),
		ScoreThreshold: qdrant.PtrOf(scoreThreshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	out := make([]models.ScoredDocument, 0, len(points))
	for _, p := range points {
		doc := models.ScoredDocument{Score: p.GetScore()}
		payload := p.GetPayload()
		if v, ok := payload["content"]; ok {
			doc.Content = v.GetStringValue()
		}
		if v, ok := payload["metadata"]; ok {
			if raw := v.GetStringValue(); raw != "" {
				if err := json.Unmarshal([]byte(raw), &doc.Metadata); err != nil {
					return nil, fmt.Errorf("unmarshal payload metadata: %w", err)
				}
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

var _ core.VectorStore = (*QdrantStore)(nil)
