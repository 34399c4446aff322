package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderMatchesIncludePatterns(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy")
	writeCorpusFile(t, corpus, "hr/raw.csv", "a,b,c")
	writeCorpusFile(t, corpus, "general/readme.txt", "welcome")

	loader := NewLoaderService(nil, nil)
	docs, err := loader.Load(corpus)
	require.NoError(t, err)

	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, doc.Source)
	}
	assert.ElementsMatch(t, []string{"hr/leave.md", "general/readme.txt"}, sources)
}

func TestLoaderExcludePatternsWin(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy")
	writeCorpusFile(t, corpus, "hr/draft/wip.md", "unfinished")

	loader := NewLoaderService(nil, []string{"**/draft/**"})
	docs, err := loader.Load(corpus)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hr/leave.md", docs[0].Source)
}

// Document ids derive from the relative path, so re-loading an unchanged
// corpus reproduces the same ids.
func TestLoaderDocumentIDsAreStable(t *testing.T) {
	corpus := t.TempDir()
	writeCorpusFile(t, corpus, "hr/leave.md", "vacation policy")

	loader := NewLoaderService(nil, nil)
	first, err := loader.Load(corpus)
	require.NoError(t, err)
	second, err := loader.Load(corpus)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.NotEmpty(t, first[0].ID)
}
