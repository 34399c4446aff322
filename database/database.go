package database

import (
	"context"

	"github.com/baotran/ragchat-be/types"
)

// IndexEntry is the tuple the vector index owns for one chunk: identifier,
// embedding, passage text and the metadata the permission filter consumes.
type IndexEntry struct {
	ChunkID  string              `json:"chunk_id"`
	Vector   []float32           `json:"vector"`
	Text     string              `json:"text"`
	Tag      types.DepartmentTag `json:"tag"`
	DocID    string              `json:"doc_id"`
	ChunkSeq int                 `json:"chunk_seq"`
	Source   string              `json:"source"`
}

// ScoredEntry pairs an entry with its query similarity.
type ScoredEntry struct {
	Entry IndexEntry
	Score float64
}

// VectorIndex is the read side of the index. Implementations are read-only
// once opened; a rebuild produces a fresh index that replaces the old one
// through the IndexManager.
type VectorIndex interface {
	// Search returns up to k entries ranked by cosine similarity.
	Search(ctx context.Context, vector []float32, k int) ([]ScoredEntry, error)
	// SearchDiverse applies maximal-marginal-relevance selection over a
	// wider candidate pool to reduce near-duplicate passages in the result.
	SearchDiverse(ctx context.Context, vector []float32, k int, lambda float64) ([]ScoredEntry, error)
	// Model identifies the embedding model the index was built with.
	Model() string
	Dimension() int
	Count() int
	Close() error
}

// IndexBuilder accumulates entries for a fresh index. Commit makes the new
// index durable and returns it opened for serving; until then the previously
// committed index stays authoritative. Abort discards the build.
type IndexBuilder interface {
	Add(ctx context.Context, entries ...IndexEntry) error
	Commit(ctx context.Context) (VectorIndex, error)
	Abort() error
}

// ChatStore persists per-user conversations.
type ChatStore interface {
	CreateChat(ctx context.Context, chat *Chat) error
	GetChat(ctx context.Context, id string) (*Chat, error)
	ListChats(ctx context.Context, userID string) ([]Chat, error)
	DeleteChat(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, message *ChatMessage) error
	GetMessages(ctx context.Context, chatID string) ([]ChatMessage, error)
	DeleteMessages(ctx context.Context, chatID string) error
}

// Chat represents a conversation.
type Chat struct {
	ID        string `bson:"_id" json:"id"`
	Title     string `bson:"title" json:"title"`
	UserID    string `bson:"user_id" json:"user_id"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
	UpdatedAt int64  `bson:"updated_at" json:"updated_at"`
}

// ChatMessage represents a single stored message. Assistant messages carry
// the source passages the answer was grounded in.
type ChatMessage struct {
	ID        string                `bson:"_id" json:"id"`
	Role      string                `bson:"role" json:"role"`
	Content   string                `bson:"content" json:"content"`
	ChatID    string                `bson:"chat_id" json:"chat_id"`
	Sources   []types.SourcePassage `bson:"sources,omitempty" json:"sources,omitempty"`
	CreatedAt int64                 `bson:"created_at" json:"created_at"`
}
