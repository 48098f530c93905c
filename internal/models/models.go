package models

// Processing states shared by repositories and conversation threads.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// Assistant represents one remote AI assistant, created once per name.
type Assistant struct {
	ID   string `db:"assistant_id" json:"assistant_id"`
	Name string `db:"name" json:"name"`
}

// Repo represents a GitHub repository registered for analysis.
// (Owner, Name) is unique. Collection is derived from the pair and stays
// stable across re-ingestions so the vector collection can be reset and
// reused instead of orphaned.
type Repo struct {
	ID          string `db:"id" json:"id"`
	Owner       string `db:"owner" json:"owner"`
	Name        string `db:"name" json:"name"`
	Collection  string `db:"collection" json:"collection"`
	AssistantID string `db:"assistant_id" json:"assistant_id"`
	ThreadID    string `db:"thread_id" json:"thread_id"`
	Status      string `db:"status" json:"status"` // processing | completed
}

// Thread is the persistent conversation context for one repository.
// AIMessageID stays empty until the first completed conversation turn.
type Thread struct {
	ID          string `db:"thread_id" json:"thread_id"`
	Status      string `db:"status" json:"status"` // processing | completed
	AIMessageID string `db:"ai_message_id" json:"ai_message_id"`
}

// Document is one retrieval chunk produced by the splitter. Chunks live
// only in the vector index, never in the relational store.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// ScoredDocument is a similarity-search hit.
type ScoredDocument struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float32        `json:"score"`
}
