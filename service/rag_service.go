package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/types"
)

// NoMatchMessage is the fixed answer returned when the permission filter
// removes every retrieved candidate. It must never be replaced by a
// generated answer.
const NoMatchMessage = "I am sorry, I cannot answer the question as no relevant documents were found for your access level."

// TruncationMarker is appended when the assembled context is cut to fit the
// character budget, so a clipped passage is never mistaken for a complete one.
const TruncationMarker = "\n[context truncated]"

const answerPromptTemplate = `You are a knowledgeable assistant specializing in %s department information. Your goal is to provide accurate, helpful, and contextually relevant answers based on employee inquiries.

You will extract and use relevant details from the provided context to construct a clear response. If the answer depends on information not present in the context and the question is factual, respond with:
"I do not know the answer to that question."

However, if the question is not factual (e.g. greetings, small talk), respond politely and appropriately without referencing the context.

Question: %s

Context:
%s

Your response should be clear, concise, based on facts found in the context, and free from personal opinions or unverifiable details.`

type RAGConfig struct {
	TopK            int     // candidates fetched before filtering
	ContextSize     int     // retained passages assembled into the prompt
	MaxContextChars int     // character budget for the context block
	MMRLambda       float64 // relevance/diversity trade-off for retrieval
}

var DefaultRAGConfig = RAGConfig{
	TopK:            6,
	ContextSize:     3,
	MaxContextChars: 4000,
	MMRLambda:       0.7,
}

// RAGService is the query engine: embed the question, retrieve candidates,
// filter them by requester department, assemble the retained passages into a
// bounded context and generate a grounded answer. Every step is sequential;
// nothing before the returned answer mutates shared state, so a caller may
// abandon the request at any point.
type RAGService struct {
	manager     *database.IndexManager
	embedder    Embedder
	ai          AIService
	permissions *PermissionService
	config      RAGConfig
}

func NewRAGService(
	manager *database.IndexManager,
	embedder Embedder,
	ai AIService,
	permissions *PermissionService,
	config RAGConfig,
) *RAGService {
	if config.TopK <= 0 {
		config.TopK = DefaultRAGConfig.TopK
	}
	if config.ContextSize <= 0 {
		config.ContextSize = DefaultRAGConfig.ContextSize
	}
	if config.MaxContextChars <= 0 {
		config.MaxContextChars = DefaultRAGConfig.MaxContextChars
	}
	if config.MMRLambda <= 0 || config.MMRLambda > 1 {
		config.MMRLambda = DefaultRAGConfig.MMRLambda
	}
	return &RAGService{
		manager:     manager,
		embedder:    embedder,
		ai:          ai,
		permissions: permissions,
		config:      config,
	}
}

// Ask answers a question for a requester department. A response with NoMatch
// set means the filter retained nothing; that outcome never reaches the
// generation service. Service failures come back as errors, never disguised
// as an empty match.
func (s *RAGService) Ask(ctx context.Context, question, department string) (*types.ChatResponse, error) {
	retained, err := s.retrieve(ctx, question, department)
	if err != nil {
		return nil, err
	}
	if len(retained) == 0 {
		return &types.ChatResponse{
			Answer:  NoMatchMessage,
			Sources: []types.SourcePassage{},
			NoMatch: true,
		}, nil
	}

	contextBlock, sources := s.buildContext(retained)
	prompt := fmt.Sprintf(answerPromptTemplate, department, question, contextBlock)

	answer, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return &types.ChatResponse{
		Answer:  answer,
		Sources: sources,
	}, nil
}

// Search runs retrieval and filtering without generation, for callers that
// only want the permitted passages.
func (s *RAGService) Search(ctx context.Context, query, department string, limit int) ([]types.SourcePassage, error) {
	retained, err := s.retrieve(ctx, query, department)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(retained) {
		retained = retained[:limit]
	}
	passages := make([]types.SourcePassage, 0, len(retained))
	for _, entry := range retained {
		passages = append(passages, toSourcePassage(entry))
	}
	return passages, nil
}

func (s *RAGService) retrieve(ctx context.Context, question, department string) ([]database.ScoredEntry, error) {
	dept, err := types.ParseDepartment(department)
	if err != nil {
		return nil, err
	}

	index, err := s.manager.Current()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(index.Model(), s.embedder.Model()) {
		return nil, fmt.Errorf("%w: index built with %q, serving embedder is %q",
			types.ErrModelMismatch, index.Model(), s.embedder.Model())
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	candidates, err := index.SearchDiverse(ctx, vector, s.config.TopK, s.config.MMRLambda)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return s.permissions.Filter(dept, candidates), nil
}

// buildContext concatenates up to ContextSize retained passages within the
// character budget, keeping retrieval order. The returned sources list names
// exactly the passages that made it into the block.
func (s *RAGService) buildContext(retained []database.ScoredEntry) (string, []types.SourcePassage) {
	n := s.config.ContextSize
	if n > len(retained) {
		n = len(retained)
	}

	var b strings.Builder
	var sources []types.SourcePassage
	truncated := false

	for i := 0; i < n; i++ {
		text := retained[i].Entry.Text
		sep := ""
		if b.Len() > 0 {
			sep = "\n\n"
		}
		remaining := s.config.MaxContextChars - b.Len() - len(sep)
		if remaining <= 0 {
			truncated = true
			break
		}
		if len(text) > remaining {
			// Cut on a rune boundary so the clipped passage stays valid UTF-8.
			cut := remaining
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
			truncated = true
		}
		b.WriteString(sep)
		b.WriteString(text)
		sources = append(sources, toSourcePassage(retained[i]))
		if truncated {
			break
		}
	}

	if truncated {
		b.WriteString(TruncationMarker)
	}
	return b.String(), sources
}

func toSourcePassage(entry database.ScoredEntry) types.SourcePassage {
	return types.SourcePassage{
		Text:       entry.Entry.Text,
		Source:     entry.Entry.Source,
		Department: entry.Entry.Tag.String(),
		DocID:      entry.Entry.DocID,
		ChunkSeq:   entry.Entry.ChunkSeq,
		Score:      entry.Score,
	}
}
