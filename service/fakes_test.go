package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/baotran/ragchat-be/database"
)

// wordBagEmbedder is a deterministic stand-in for a real embedding service:
// each word hashes to a vector component, so texts sharing words score a
// higher cosine similarity. Good enough to make retrieval ranking testable.
type wordBagEmbedder struct {
	model string
	dim   int
	fail  bool
}

func newWordBagEmbedder(model string, dim int) *wordBagEmbedder {
	return &wordBagEmbedder{model: model, dim: dim}
}

func (e *wordBagEmbedder) Model() string  { return e.model }
func (e *wordBagEmbedder) Dimension() int { return e.dim }

func (e *wordBagEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	vector := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[int(h.Sum32())%e.dim]++
	}
	return vector, nil
}

// memIndex is an in-memory VectorIndex for query-engine tests.
type memIndex struct {
	model   string
	dim     int
	entries []database.IndexEntry
	closed  bool
}

func (ix *memIndex) Model() string  { return ix.model }
func (ix *memIndex) Dimension() int { return ix.dim }
func (ix *memIndex) Count() int     { return len(ix.entries) }
func (ix *memIndex) Close() error   { ix.closed = true; return nil }

func (ix *memIndex) Search(ctx context.Context, vector []float32, k int) ([]database.ScoredEntry, error) {
	scored := make([]database.ScoredEntry, 0, len(ix.entries))
	for _, entry := range ix.entries {
		scored = append(scored, database.ScoredEntry{
			Entry: entry,
			Score: cosine(vector, entry.Vector),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (ix *memIndex) SearchDiverse(ctx context.Context, vector []float32, k int, lambda float64) ([]database.ScoredEntry, error) {
	return ix.Search(ctx, vector, k)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// memBuilder collects entries in memory and commits them as a memIndex.
type memBuilder struct {
	model   string
	dim     int
	entries []database.IndexEntry
	aborted bool
}

func (b *memBuilder) Add(ctx context.Context, entries ...database.IndexEntry) error {
	b.entries = append(b.entries, entries...)
	return nil
}

func (b *memBuilder) Commit(ctx context.Context) (database.VectorIndex, error) {
	return &memIndex{model: b.model, dim: b.dim, entries: b.entries}, nil
}

func (b *memBuilder) Abort() error {
	b.aborted = true
	return nil
}

// recordingAI records the prompts it is asked to complete.
type recordingAI struct {
	answer  string
	prompts []string
}

func (a *recordingAI) Generate(ctx context.Context, prompt string) (string, error) {
	a.prompts = append(a.prompts, prompt)
	return a.answer, nil
}
