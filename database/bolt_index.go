package database

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"go.etcd.io/bbolt"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")

	metaModel     = []byte("model")
	metaDimension = []byte("dimension")
)

// BoltIndex is the default vector index: a single bbolt file holding every
// (vector, text, metadata) entry plus the embedding model id, loaded into
// memory on open and searched brute-force with cosine similarity. The file is
// the persistence bundle; a rebuild writes a sibling file and renames it over
// this one.
type BoltIndex struct {
	db        *bbolt.DB
	path      string
	model     string
	dimension int
	entries   []IndexEntry
}

// OpenBoltIndex opens a committed index bundle read-only and loads its
// entries into memory.
func OpenBoltIndex(path string) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index bundle: %w", err)
	}

	ix := &BoltIndex{db: db, path: path}
	if err := ix.load(); err != nil {
		db.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *BoltIndex) load() error {
	return ix.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("index bundle %s has no meta bucket", ix.path)
		}
		ix.model = string(meta.Get(metaModel))
		dim, err := strconv.Atoi(string(meta.Get(metaDimension)))
		if err != nil {
			return fmt.Errorf("index bundle %s has invalid dimension: %w", ix.path, err)
		}
		ix.dimension = dim

		b := tx.Bucket(bucketEntries)
		if b == nil {
			return fmt.Errorf("index bundle %s has no entries bucket", ix.path)
		}
		err = b.ForEach(func(k, v []byte) error {
			var entry IndexEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt entry %s: %w", k, err)
			}
			ix.entries = append(ix.entries, entry)
			return nil
		})
		if err != nil {
			return err
		}
		// Stable ordering so repeated loads rank tied scores identically.
		sort.Slice(ix.entries, func(i, j int) bool {
			return ix.entries[i].ChunkID < ix.entries[j].ChunkID
		})
		return nil
	})
}

func (ix *BoltIndex) Model() string  { return ix.model }
func (ix *BoltIndex) Dimension() int { return ix.dimension }
func (ix *BoltIndex) Count() int     { return len(ix.entries) }

func (ix *BoltIndex) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Search ranks every entry by cosine similarity to the query vector and
// returns the top k.
func (ix *BoltIndex) Search(ctx context.Context, vector []float32, k int) ([]ScoredEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", ix.dimension, len(vector))
	}
	if len(ix.entries) == 0 || k <= 0 {
		return nil, nil
	}

	scored := make([]ScoredEntry, 0, len(ix.entries))
	for _, entry := range ix.entries {
		scored = append(scored, ScoredEntry{
			Entry: entry,
			Score: cosineSimilarity(vector, entry.Vector),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// SearchDiverse fetches a wider candidate pool and applies maximal marginal
// relevance, MMR(c) = lambda*relevance(c) - (1-lambda)*maxSim(c, selected),
// so the returned set trades a little top-rank relevance for less redundancy.
func (ix *BoltIndex) SearchDiverse(ctx context.Context, vector []float32, k int, lambda float64) ([]ScoredEntry, error) {
	pool := k * 4
	if pool < 20 {
		pool = 20
	}
	candidates, err := ix.Search(ctx, vector, pool)
	if err != nil {
		return nil, err
	}
	return mmrSelect(candidates, k, lambda), nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BoltIndexBuilder accumulates entries in a sibling ".building" file. Commit
// seals it and renames it over the serving path, so readers see either the
// fully-old or fully-new bundle. A crashed or aborted build leaves the
// serving bundle untouched.
type BoltIndexBuilder struct {
	db        *bbolt.DB
	tmpPath   string
	finalPath string
	model     string
	dimension int
	count     int
	seen      map[string]struct{}
}

func NewBoltIndexBuilder(path, model string, dimension int) (*BoltIndexBuilder, error) {
	if model == "" {
		return nil, fmt.Errorf("index builder requires an embedding model id")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("index builder requires a positive dimension, got %d", dimension)
	}

	tmpPath := path + ".building"
	// A stale temp file from a crashed build is discarded.
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to clear stale build file: %w", err)
	}

	db, err := bbolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create build file: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to create index buckets: %w", err)
	}

	return &BoltIndexBuilder{
		db:        db,
		tmpPath:   tmpPath,
		finalPath: path,
		model:     model,
		dimension: dimension,
		seen:      make(map[string]struct{}),
	}, nil
}

func (b *BoltIndexBuilder) Add(ctx context.Context, entries ...IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEntries)
		for _, entry := range entries {
			if len(entry.Vector) != b.dimension {
				return fmt.Errorf("vector dimension mismatch for %s: expected %d, got %d",
					entry.ChunkID, b.dimension, len(entry.Vector))
			}
			if _, dup := b.seen[entry.ChunkID]; dup {
				return fmt.Errorf("duplicate chunk id %s", entry.ChunkID)
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(entry.ChunkID), data); err != nil {
				return err
			}
			b.seen[entry.ChunkID] = struct{}{}
			b.count++
		}
		return nil
	})
}

func (b *BoltIndexBuilder) Commit(ctx context.Context) (VectorIndex, error) {
	if err := ctx.Err(); err != nil {
		b.Abort()
		return nil, err
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(metaModel, []byte(b.model)); err != nil {
			return err
		}
		return meta.Put(metaDimension, []byte(strconv.Itoa(b.dimension)))
	})
	if err != nil {
		b.Abort()
		return nil, fmt.Errorf("failed to write index metadata: %w", err)
	}
	if err := b.db.Close(); err != nil {
		os.Remove(b.tmpPath)
		return nil, fmt.Errorf("failed to seal index bundle: %w", err)
	}
	if err := os.Rename(b.tmpPath, b.finalPath); err != nil {
		os.Remove(b.tmpPath)
		return nil, fmt.Errorf("failed to swap index bundle: %w", err)
	}
	return OpenBoltIndex(b.finalPath)
}

func (b *BoltIndexBuilder) Abort() error {
	b.db.Close()
	return os.Remove(b.tmpPath)
}
