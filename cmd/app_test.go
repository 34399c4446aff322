package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/baotran/ragchat-be/config"
	"github.com/baotran/ragchat-be/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Model() string  { return "test-model" }
func (e *countingEmbedder) Dimension() int { return 3 }

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return []float32{1, 0, 0}, nil
}

// The ingest service embeds with the instance it is handed, so the server can
// share one embedder between ingestion and the query engine.
func TestIngestServiceUsesInjectedEmbedder(t *testing.T) {
	corpus := t.TempDir()
	docPath := filepath.Join(corpus, "hr", "leave.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(docPath), 0o755))
	require.NoError(t, os.WriteFile(docPath, []byte("vacation policy details"), 0o644))

	cfg := &config.Config{
		VectorIndex: config.VectorIndexConfig{
			Backend: "bolt",
			Path:    filepath.Join(t.TempDir(), "index.db"),
		},
		Ingest: config.IngestConfig{ChunkSize: 20, Overlap: 5},
	}
	embedder := &countingEmbedder{}
	manager := database.NewIndexManager(nil)

	svc, err := newIngestService(cfg, embedder, manager)
	require.NoError(t, err)

	report, err := svc.Ingest(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, "test-model", report.Model)
	assert.Greater(t, embedder.calls, 0)

	index, err := manager.Current()
	require.NoError(t, err)
	assert.Equal(t, "test-model", index.Model())
}
