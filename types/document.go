package types

import "fmt"

// Document is a corpus file after loading and tagging, before chunking.
// Immutable once indexed; re-ingestion replaces the whole index.
type Document struct {
	ID      string        `json:"id" bson:"_id"`
	Source  string        `json:"source" bson:"source"`
	Content string        `json:"content" bson:"content"`
	Tag     DepartmentTag `json:"tag" bson:"tag"`
}

// Chunk is the unit of embedding and retrieval: a fixed-size overlapping
// word window cut from exactly one document, inheriting its department tag.
type Chunk struct {
	ID     string        `json:"id"`
	DocID  string        `json:"doc_id"`
	Seq    int           `json:"seq"`
	Text   string        `json:"text"`
	Words  int           `json:"words"`
	Tag    DepartmentTag `json:"tag"`
	Source string        `json:"source"`
}

// ChunkKey composes the index-unique chunk identifier.
func ChunkKey(docID string, seq int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, seq)
}

// ChunkerConfig contains configuration options for document chunking.
type ChunkerConfig struct {
	ChunkSize int // chunk window size in words
	Overlap   int // words shared between consecutive chunks
}

var DefaultChunkerConfig = ChunkerConfig{
	ChunkSize: 500,
	Overlap:   50,
}
