package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baotran/ragchat-be/config"
	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"
)

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (service.Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding provider openai requires OPENAI_API_KEY")
		}
		return service.NewOpenAIEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dimension, timeout), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding provider gemini requires GOOGLE_API_KEY")
		}
		return service.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.Model, cfg.Dimension, timeout)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newAIService(cfg config.GenerationConfig) (service.AIService, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("generation provider openai requires OPENAI_API_KEY")
		}
		return service.NewOpenAIService(cfg.BaseURL, cfg.APIKey, cfg.Model, timeout), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("generation provider gemini requires GOOGLE_API_KEY")
		}
		keys := strings.Split(cfg.APIKey, ",")
		return service.NewGeminiService(keys, cfg.Model, timeout)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// newIndexManager opens the configured index backend. A missing bolt bundle
// is not an error; the manager starts empty and the first ingest fills it.
func newIndexManager(cfg config.VectorIndexConfig, embedding config.EmbeddingConfig) (*database.IndexManager, error) {
	switch cfg.Backend {
	case "bolt", "":
		if _, err := os.Stat(cfg.Path); err != nil {
			log.Printf("no index bundle at %s, queries will fail until ingest runs", cfg.Path)
			return database.NewIndexManager(nil), nil
		}
		index, err := database.OpenBoltIndex(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open index bundle: %w", err)
		}
		return database.NewIndexManager(index), nil
	case "weaviate":
		index, err := database.NewWeaviateIndex(database.WeaviateIndexConfig{
			Host:   cfg.Weaviate.Host,
			APIKey: cfg.Weaviate.APIKey,
		}, embedding.Model, embedding.Dimension)
		if err != nil {
			return nil, fmt.Errorf("connect weaviate: %w", err)
		}
		return database.NewIndexManager(index), nil
	default:
		return nil, fmt.Errorf("unknown vector index backend %q", cfg.Backend)
	}
}

func newBuilderFactory(cfg config.VectorIndexConfig) (service.BuilderFactory, error) {
	switch cfg.Backend {
	case "bolt", "":
		path := cfg.Path
		return func(model string, dimension int) (database.IndexBuilder, error) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			return database.NewBoltIndexBuilder(path, model, dimension)
		}, nil
	case "weaviate":
		wcfg := database.WeaviateIndexConfig{
			Host:   cfg.Weaviate.Host,
			APIKey: cfg.Weaviate.APIKey,
		}
		return func(model string, dimension int) (database.IndexBuilder, error) {
			return database.NewWeaviateIndexBuilder(wcfg, model, dimension)
		}, nil
	default:
		return nil, fmt.Errorf("unknown vector index backend %q", cfg.Backend)
	}
}

func newIngestService(cfg *config.Config, embedder service.Embedder, manager *database.IndexManager) (*service.IngestService, error) {
	chunker, err := service.NewChunkerService(types.ChunkerConfig{
		ChunkSize: cfg.Ingest.ChunkSize,
		Overlap:   cfg.Ingest.Overlap,
	})
	if err != nil {
		return nil, err
	}
	factory, err := newBuilderFactory(cfg.VectorIndex)
	if err != nil {
		return nil, err
	}
	loader := service.NewLoaderService(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	return service.NewIngestService(loader, service.NewTaggerService(), chunker, embedder, manager, factory), nil
}
