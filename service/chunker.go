package service

import (
	"fmt"
	"strings"

	"github.com/baotran/ragchat-be/types"
)

// ChunkerService splits document text into overlapping word windows. The
// window advances by chunkSize-overlap words per step, so consecutive chunks
// share exactly overlap words; the final chunk may be shorter.
type ChunkerService struct {
	chunkSize int
	overlap   int
}

func NewChunkerService(config types.ChunkerConfig) (*ChunkerService, error) {
	if config.ChunkSize <= 0 {
		config.ChunkSize = types.DefaultChunkerConfig.ChunkSize
	}
	if config.Overlap < 0 {
		config.Overlap = types.DefaultChunkerConfig.Overlap
	}
	// Equal or larger overlap would advance the window by zero or fewer
	// words per step and never terminate.
	if config.Overlap >= config.ChunkSize {
		return nil, fmt.Errorf("%w: size %d, overlap %d",
			types.ErrChunkOverlap, config.ChunkSize, config.Overlap)
	}
	return &ChunkerService{
		chunkSize: config.ChunkSize,
		overlap:   config.Overlap,
	}, nil
}

// Split cuts text into ordered passage strings. Text shorter than the chunk
// size yields exactly one chunk equal to the whole text; empty text yields
// none. Deterministic, no side effects.
func (s *ChunkerService) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= s.chunkSize {
		return []string{strings.Join(words, " ")}
	}

	step := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + s.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ChunkDocument splits a tagged document and wraps every window with the
// identity and metadata the index needs. Chunks inherit the document's
// department tag unchanged.
func (s *ChunkerService) ChunkDocument(doc types.Document) []types.Chunk {
	passages := s.Split(doc.Content)
	chunks := make([]types.Chunk, 0, len(passages))
	for seq, text := range passages {
		chunks = append(chunks, types.Chunk{
			ID:     types.ChunkKey(doc.ID, seq),
			DocID:  doc.ID,
			Seq:    seq,
			Text:   text,
			Words:  len(strings.Fields(text)),
			Tag:    doc.Tag,
			Source: doc.Source,
		})
	}
	return chunks
}
