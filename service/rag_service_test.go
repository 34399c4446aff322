package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexEntry(t *testing.T, embedder Embedder, id, text string, tag types.DepartmentTag) database.IndexEntry {
	t.Helper()
	vector, err := embedder.Embed(context.Background(), text)
	require.NoError(t, err)
	return database.IndexEntry{
		ChunkID: id,
		Vector:  vector,
		Text:    text,
		Tag:     tag,
		DocID:   id,
		Source:  tag.String() + "/" + id + ".md",
	}
}

func newTestRAG(t *testing.T, entries []database.IndexEntry, embedder Embedder, ai AIService, config RAGConfig) *RAGService {
	t.Helper()
	index := &memIndex{model: embedder.Model(), dim: embedder.Dimension(), entries: entries}
	manager := database.NewIndexManager(index)
	return NewRAGService(manager, embedder, ai, NewPermissionService(), config)
}

func departmentCorpus(t *testing.T, embedder Embedder) []database.IndexEntry {
	return []database.IndexEntry{
		indexEntry(t, embedder, "hr-leave", "employees receive twenty five vacation days per year", types.SingleTag(types.DepartmentHR)),
		indexEntry(t, embedder, "fin-budget", "quarterly budget allocation and expense reporting", types.SingleTag(types.DepartmentFinance)),
		indexEntry(t, embedder, "gen-welcome", "welcome handbook with office locations and contacts", types.BroadcastTag()),
	}
}

func TestAskAnswersFromPermittedPassages(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	ai := &recordingAI{answer: "You get twenty five vacation days."}
	rag := newTestRAG(t, departmentCorpus(t, embedder), embedder, ai, RAGConfig{})

	resp, err := rag.Ask(context.Background(), "how many vacation days do employees receive", types.DepartmentHR)
	require.NoError(t, err)

	assert.False(t, resp.NoMatch)
	assert.Equal(t, ai.answer, resp.Answer)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "hr-leave", resp.Sources[0].DocID)

	// The generated prompt carries the department and the permitted passage.
	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], types.DepartmentHR)
	assert.Contains(t, ai.prompts[0], "vacation days")
}

// When every candidate is filtered out, the caller gets the fixed no-match
// response and the generation service is never invoked.
func TestAskNoMatchSkipsGeneration(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	ai := &recordingAI{answer: "should never be used"}
	hrOnly := []database.IndexEntry{
		indexEntry(t, embedder, "hr-leave", "employees receive twenty five vacation days per year", types.SingleTag(types.DepartmentHR)),
	}
	rag := newTestRAG(t, hrOnly, embedder, ai, RAGConfig{})

	resp, err := rag.Ask(context.Background(), "how many vacation days do employees receive", types.DepartmentFinance)
	require.NoError(t, err)

	assert.True(t, resp.NoMatch)
	assert.Equal(t, NoMatchMessage, resp.Answer)
	assert.Empty(t, resp.Sources)
	assert.Empty(t, ai.prompts)
}

func TestAskNeverLeaksOtherDepartments(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	ai := &recordingAI{answer: "answer"}
	rag := newTestRAG(t, departmentCorpus(t, embedder), embedder, ai, RAGConfig{})

	resp, err := rag.Ask(context.Background(), "quarterly budget allocation and expense reporting", types.DepartmentHR)
	require.NoError(t, err)

	for _, source := range resp.Sources {
		assert.NotEqual(t, types.DepartmentFinance, source.Department)
	}
	require.Len(t, ai.prompts, 1)
	assert.NotContains(t, ai.prompts[0], "quarterly budget allocation")
}

func TestAskRejectsUnknownDepartment(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	rag := newTestRAG(t, departmentCorpus(t, embedder), embedder, &recordingAI{}, RAGConfig{})

	_, err := rag.Ask(context.Background(), "anything", "legal")
	assert.ErrorIs(t, err, types.ErrUnknownDepartment)
}

func TestAskWithoutIndex(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	manager := database.NewIndexManager(nil)
	rag := NewRAGService(manager, embedder, &recordingAI{}, NewPermissionService(), RAGConfig{})

	_, err := rag.Ask(context.Background(), "anything", types.DepartmentHR)
	assert.ErrorIs(t, err, types.ErrIndexNotLoaded)
}

func TestAskDetectsModelMismatch(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	index := &memIndex{model: "older-model", dim: 32, entries: departmentCorpus(t, embedder)}
	manager := database.NewIndexManager(index)
	rag := NewRAGService(manager, embedder, &recordingAI{}, NewPermissionService(), RAGConfig{})

	_, err := rag.Ask(context.Background(), "anything", types.DepartmentHR)
	assert.ErrorIs(t, err, types.ErrModelMismatch)
}

func TestAskTruncatesOversizedContext(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	ai := &recordingAI{answer: "answer"}
	long := strings.Repeat("vacation days policy ", 50)
	entries := []database.IndexEntry{
		indexEntry(t, embedder, "hr-long", long, types.SingleTag(types.DepartmentHR)),
	}
	rag := newTestRAG(t, entries, embedder, ai, RAGConfig{MaxContextChars: 60})

	resp, err := rag.Ask(context.Background(), "vacation days", types.DepartmentHR)
	require.NoError(t, err)
	assert.False(t, resp.NoMatch)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], TruncationMarker)
}

// A passage that exactly exhausts the budget must not be followed by a
// dangling separator, and dropping further passages is flagged as truncation.
func TestBuildContextBudgetBoundary(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	rag := newTestRAG(t, nil, embedder, &recordingAI{}, RAGConfig{MaxContextChars: 10})

	retained := []database.ScoredEntry{
		{Entry: database.IndexEntry{ChunkID: "a", DocID: "a", Text: "0123456789"}, Score: 1},
		{Entry: database.IndexEntry{ChunkID: "b", DocID: "b", Text: "more text"}, Score: 0.5},
	}
	contextBlock, sources := rag.buildContext(retained)

	assert.Equal(t, "0123456789"+TruncationMarker, contextBlock)
	require.Len(t, sources, 1)
	assert.Equal(t, "a", sources[0].DocID)
}

func TestBuildContextCutsOnRuneBoundary(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	rag := newTestRAG(t, nil, embedder, &recordingAI{}, RAGConfig{MaxContextChars: 5})

	retained := []database.ScoredEntry{
		{Entry: database.IndexEntry{ChunkID: "a", Text: "ééééé"}, Score: 1},
	}
	contextBlock, _ := rag.buildContext(retained)

	assert.True(t, utf8.ValidString(contextBlock))
	assert.Equal(t, "éé"+TruncationMarker, contextBlock)
}

func TestSearchReturnsPermittedPassagesOnly(t *testing.T) {
	embedder := newWordBagEmbedder("test-model", 32)
	rag := newTestRAG(t, departmentCorpus(t, embedder), embedder, &recordingAI{}, RAGConfig{})

	passages, err := rag.Search(context.Background(), "vacation days", types.DepartmentHR, 0)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	for _, p := range passages {
		ok := p.Department == types.DepartmentHR || p.Department == types.BroadcastSegment
		assert.True(t, ok, "unexpected department %q", p.Department)
	}

	limited, err := rag.Search(context.Background(), "vacation days", types.DepartmentHR, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
	assert.Equal(t, "hr-leave", limited[0].DocID)
}
