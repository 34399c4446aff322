package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestIngestService(t *testing.T, embedder Embedder, manager *database.IndexManager) (*IngestService, *[]*memBuilder) {
	t.Helper()
	chunker, err := NewChunkerService(types.ChunkerConfig{ChunkSize: 20, Overlap: 5})
	require.NoError(t, err)

	var builders []*memBuilder
	factory := func(model string, dimension int) (database.IndexBuilder, error) {
		b := &memBuilder{model: model, dim: dimension}
		builders = append(builders, b)
		return b, nil
	}
	svc := NewIngestService(NewLoaderService(nil, nil), NewTaggerService(), chunker, embedder, manager, factory)
	return svc, &builders
}

func TestIngestBuildsAndSwapsIndex(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "employees receive twenty five vacation days per year")
	writeCorpusFile(t, corpus, "general/welcome.txt", "welcome to the company handbook for everyone")

	embedder := newWordBagEmbedder("test-model", 16)
	manager := database.NewIndexManager(nil)
	svc, _ := newTestIngestService(t, embedder, manager)

	report, err := svc.Ingest(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Chunks)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "test-model", report.Model)

	index, err := manager.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, index.Count())
	assert.Equal(t, "test-model", index.Model())
}

// A document whose path names no department is skipped with a report entry;
// it must never default to broadcast visibility.
func TestIngestSkipsUntaggedDocuments(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy details")
	writeCorpusFile(t, corpus, "misc/notes.txt", "stray notes without a department")

	embedder := newWordBagEmbedder("test-model", 16)
	manager := database.NewIndexManager(nil)
	svc, builders := newTestIngestService(t, embedder, manager)

	report, err := svc.Ingest(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, []string{"misc/notes.txt"}, report.Skipped)

	require.Len(t, *builders, 1)
	for _, entry := range (*builders)[0].entries {
		assert.False(t, entry.Tag.Broadcast)
		assert.Equal(t, types.DepartmentHR, entry.Tag.Name)
	}
}

func TestIngestEmptyCorpus(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 16)
	manager := database.NewIndexManager(nil)
	svc, _ := newTestIngestService(t, embedder, manager)

	_, err := svc.Ingest(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, types.ErrEmptyCorpus)
}

func TestIngestAllDocumentsSkippedIsEmptyCorpus(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "misc/notes.txt", "no department anywhere")

	embedder := newWordBagEmbedder("test-model", 16)
	manager := database.NewIndexManager(nil)
	svc, builders := newTestIngestService(t, embedder, manager)

	_, err := svc.Ingest(context.Background(), corpus)
	assert.ErrorIs(t, err, types.ErrEmptyCorpus)
	require.Len(t, *builders, 1)
	assert.True(t, (*builders)[0].aborted)
}

// An embedding failure aborts the build; the previous index keeps serving.
func TestIngestEmbeddingFailureAbortsBuild(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy details")

	embedder := newWordBagEmbedder("test-model", 16)
	embedder.fail = true
	manager := database.NewIndexManager(nil)
	svc, builders := newTestIngestService(t, embedder, manager)

	_, err := svc.Ingest(context.Background(), corpus)
	require.Error(t, err)
	require.Len(t, *builders, 1)
	assert.True(t, (*builders)[0].aborted)

	_, err = manager.Current()
	assert.ErrorIs(t, err, types.ErrIndexNotLoaded)
}

// Re-ingesting the same corpus reproduces identical chunk identifiers.
func TestIngestIsIdempotent(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy details for all employees")
	writeCorpusFile(t, corpus, "finance/budget.txt", "quarterly budget allocation summary")

	embedder := newWordBagEmbedder("test-model", 16)
	manager := database.NewIndexManager(nil)
	svc, builders := newTestIngestService(t, embedder, manager)

	_, err := svc.Ingest(context.Background(), corpus)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), corpus)
	require.NoError(t, err)

	require.Len(t, *builders, 2)
	ids := func(b *memBuilder) []string {
		out := make([]string, 0, len(b.entries))
		for _, e := range b.entries {
			out = append(out, e.ChunkID)
		}
		return out
	}
	assert.Equal(t, ids((*builders)[0]), ids((*builders)[1]))
}

// gatedEmbedder blocks the first Embed call until released, to hold an
// ingest mid-flight.
type gatedEmbedder struct {
	*wordBagEmbedder
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (e *gatedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.once.Do(func() {
		close(e.started)
		<-e.release
	})
	return e.wordBagEmbedder.Embed(ctx, text)
}

func TestIngestIsSingleFlight(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy details")

	embedder := &gatedEmbedder{
		wordBagEmbedder: newWordBagEmbedder("test-model", 16),
		started:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	manager := database.NewIndexManager(nil)
	svc, _ := newTestIngestService(t, embedder, manager)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Ingest(context.Background(), corpus)
		done <- err
	}()

	<-embedder.started
	_, err := svc.Ingest(context.Background(), corpus)
	assert.ErrorIs(t, err, types.ErrIngestInProgress)

	close(embedder.release)
	require.NoError(t, <-done)
}
