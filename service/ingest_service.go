package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/types"
)

// BuilderFactory opens a fresh index build for the given embedding model.
type BuilderFactory func(model string, dimension int) (database.IndexBuilder, error)

// IngestService rebuilds the vector index from a document corpus:
// load -> tag -> chunk -> embed -> fresh index -> swap. Documents without a
// recognizable department segment are skipped with a warning; an embedding
// failure aborts the whole build and leaves the previous index serving.
type IngestService struct {
	loader     *LoaderService
	tagger     *TaggerService
	chunker    *ChunkerService
	embedder   Embedder
	manager    *database.IndexManager
	newBuilder BuilderFactory
	mu         sync.Mutex
}

func NewIngestService(
	loader *LoaderService,
	tagger *TaggerService,
	chunker *ChunkerService,
	embedder Embedder,
	manager *database.IndexManager,
	newBuilder BuilderFactory,
) *IngestService {
	return &IngestService{
		loader:     loader,
		tagger:     tagger,
		chunker:    chunker,
		embedder:   embedder,
		manager:    manager,
		newBuilder: newBuilder,
	}
}

// Ingest is single-flight: a trigger while a build is running is rejected
// with ErrIngestInProgress rather than queued, so two builds can never race
// on the swap.
func (s *IngestService) Ingest(ctx context.Context, corpusDir string) (*types.IngestReport, error) {
	if !s.mu.TryLock() {
		return nil, types.ErrIngestInProgress
	}
	defer s.mu.Unlock()

	start := time.Now()

	docs, err := s.loader.Load(corpusDir)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyCorpus, corpusDir)
	}

	builder, err := s.newBuilder(s.embedder.Model(), s.embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("failed to open index build: %w", err)
	}

	report := &types.IngestReport{Model: s.embedder.Model()}
	for _, doc := range docs {
		tag, err := s.tagger.Tag(doc.Source)
		if err != nil {
			// Per-document failure: skip, never default to broadcast.
			log.Printf("ingest: skipping %s: %v", doc.Source, err)
			report.Skipped = append(report.Skipped, doc.Source)
			continue
		}
		doc.Tag = tag

		for _, chunk := range s.chunker.ChunkDocument(doc) {
			vector, err := s.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				builder.Abort()
				return nil, fmt.Errorf("embedding failed for %s, previous index remains live: %w", chunk.ID, err)
			}
			entry := database.IndexEntry{
				ChunkID:  chunk.ID,
				Vector:   vector,
				Text:     chunk.Text,
				Tag:      chunk.Tag,
				DocID:    chunk.DocID,
				ChunkSeq: chunk.Seq,
				Source:   chunk.Source,
			}
			if err := builder.Add(ctx, entry); err != nil {
				builder.Abort()
				return nil, fmt.Errorf("failed to add %s to index build: %w", chunk.ID, err)
			}
			report.Chunks++
		}
		report.Documents++
	}

	if report.Documents == 0 {
		builder.Abort()
		return nil, fmt.Errorf("%w: every document in %s was skipped", types.ErrEmptyCorpus, corpusDir)
	}

	newIndex, err := builder.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to commit index: %w", err)
	}
	if old := s.manager.Swap(newIndex); old != nil {
		old.Close()
	}

	report.DurationSec = time.Since(start).Seconds()
	log.Printf("ingest: indexed %d documents (%d chunks, %d skipped) in %.1fs",
		report.Documents, report.Chunks, len(report.Skipped), report.DurationSec)
	return report, nil
}
