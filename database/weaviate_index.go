package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/baotran/ragchat-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	PASSAGE_CLASS        = "Passage"
	PASSAGE_CLASS_OBJECT = &models.Class{
		Class: PASSAGE_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "department", DataType: []string{"text"}},
			{Name: "broadcast", DataType: []string{"boolean"}},
			{Name: "docId", DataType: []string{"text"}},
			{Name: "chunkSeq", DataType: []string{"int"}},
		},
		// Embeddings are produced by our own embedding client, never by a
		// Weaviate module, so both backends share one model id.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// WeaviateIndexConfig connects the optional remote index backend.
type WeaviateIndexConfig struct {
	Host   string
	APIKey string
}

// WeaviateIndex implements VectorIndex against a remote Weaviate instance.
// It is the deployment alternative to the bolt bundle; the embedding model id
// comes from configuration since the remote class carries no such metadata.
type WeaviateIndex struct {
	client    *weaviate.Client
	model     string
	dimension int
	count     int
}

func newWeaviateClient(config WeaviateIndexConfig) (*weaviate.Client, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}
	return client, nil
}

// NewWeaviateIndex connects to an existing Passage class for serving.
func NewWeaviateIndex(config WeaviateIndexConfig, model string, dimension int) (*WeaviateIndex, error) {
	client, err := newWeaviateClient(config)
	if err != nil {
		return nil, err
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}
	hasPassageClass := false
	for _, class := range schema.Classes {
		if class.Class == PASSAGE_CLASS {
			hasPassageClass = true
			break
		}
	}
	if !hasPassageClass {
		err = client.Schema().ClassCreator().WithClass(PASSAGE_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create Passage class: %v", err)
		}
	}

	return &WeaviateIndex{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

func (s *WeaviateIndex) Model() string  { return s.model }
func (s *WeaviateIndex) Dimension() int { return s.dimension }
func (s *WeaviateIndex) Count() int     { return s.count }
func (s *WeaviateIndex) Close() error   { return nil }

func passageFields() []graphql.Field {
	return []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "department"},
		{Name: "broadcast"},
		{Name: "docId"},
		{Name: "chunkSeq"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "distance"},
			{Name: "id"},
			{Name: "vector"},
		}},
	}
}

func (s *WeaviateIndex) Search(ctx context.Context, vector []float32, k int) ([]ScoredEntry, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	result, err := s.client.GraphQL().Get().
		WithClassName(PASSAGE_CLASS).
		WithFields(passageFields()...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var entries []ScoredEntry
	if data, ok := result.Data["Get"].(map[string]interface{})[PASSAGE_CLASS].([]interface{}); ok {
		for _, item := range data {
			passage, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			entry := IndexEntry{
				Text:     asString(passage["content"]),
				Source:   asString(passage["source"]),
				DocID:    asString(passage["docId"]),
				ChunkSeq: int(asFloat(passage["chunkSeq"])),
			}
			if broadcast, _ := passage["broadcast"].(bool); broadcast {
				entry.Tag = types.BroadcastTag()
			} else {
				entry.Tag = types.DepartmentTag{Name: asString(passage["department"])}
			}
			entry.ChunkID = types.ChunkKey(entry.DocID, entry.ChunkSeq)

			score := 0.0
			if additional, ok := passage["_additional"].(map[string]interface{}); ok {
				// Weaviate reports cosine distance; similarity is its complement.
				score = 1 - asFloat(additional["distance"])
				entry.Vector = asVector(additional["vector"])
			}
			entries = append(entries, ScoredEntry{Entry: entry, Score: score})
		}
	}
	return entries, nil
}

func (s *WeaviateIndex) SearchDiverse(ctx context.Context, vector []float32, k int, lambda float64) ([]ScoredEntry, error) {
	pool := k * 4
	if pool < 20 {
		pool = 20
	}
	candidates, err := s.Search(ctx, vector, pool)
	if err != nil {
		return nil, err
	}
	return mmrSelect(candidates, k, lambda), nil
}

// WeaviateIndexBuilder stages entries locally and only replaces the remote
// Passage class inside Commit, so an aborted or failed build leaves the
// previous passages serving. The replacement itself is class-scoped rather
// than file-atomic; deployments that need the strict reader guarantee should
// serve from the bolt backend.
type WeaviateIndexBuilder struct {
	index   *WeaviateIndex
	seen    map[string]struct{}
	entries []IndexEntry
}

func NewWeaviateIndexBuilder(config WeaviateIndexConfig, model string, dimension int) (*WeaviateIndexBuilder, error) {
	index, err := NewWeaviateIndex(config, model, dimension)
	if err != nil {
		return nil, err
	}
	return &WeaviateIndexBuilder{
		index: index,
		seen:  make(map[string]struct{}),
	}, nil
}

// Add validates and stages entries. Nothing touches the remote class here.
func (b *WeaviateIndexBuilder) Add(ctx context.Context, entries ...IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, entry := range entries {
		if len(entry.Vector) != b.index.dimension {
			return fmt.Errorf("vector dimension mismatch for %s: expected %d, got %d",
				entry.ChunkID, b.index.dimension, len(entry.Vector))
		}
		if _, dup := b.seen[entry.ChunkID]; dup {
			return fmt.Errorf("duplicate chunk id %s", entry.ChunkID)
		}
		b.seen[entry.ChunkID] = struct{}{}
		b.entries = append(b.entries, entry)
	}
	return nil
}

// Commit drops and recreates the class, then uploads the staged entries.
func (b *WeaviateIndexBuilder) Commit(ctx context.Context) (VectorIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := b.index.client.Schema().ClassDeleter().WithClassName(PASSAGE_CLASS).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete Passage class: %v", err)
	}
	err = b.index.client.Schema().ClassCreator().WithClass(PASSAGE_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Passage class: %v", err)
	}

	total := len(b.entries)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := b.index.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			entry := b.entries[j]
			properties := map[string]interface{}{
				"content":    entry.Text,
				"source":     entry.Source,
				"department": entry.Tag.Name,
				"broadcast":  entry.Tag.Broadcast,
				"docId":      entry.DocID,
				"chunkSeq":   entry.ChunkSeq,
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      PASSAGE_CLASS,
				Properties: properties,
				Vector:     entry.Vector,
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return nil, fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
	}

	b.index.count = total
	return b.index, nil
}

// Abort discards the staged entries; the remote class is untouched.
func (b *WeaviateIndexBuilder) Abort() error {
	b.entries = nil
	return nil
}

// Helper functions
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func asVector(v interface{}) []float32 {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	result := make([]float32, len(arr))
	for i, item := range arr {
		result[i] = float32(asFloat(item))
	}
	return result
}
