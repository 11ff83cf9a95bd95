package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/core/ports"
)

const (
	// tableQueryMarker mirrors the annotation prepended to table chunks
	// at ingestion time, pulling table-intent queries toward them.
	tableQueryMarker = "[FINANCIAL TABLE]"

	defaultSimilarityThreshold = 0.3
	// Table chunks are semantically sparser, so the gate loosens.
	tableSimilarityThreshold = 0.2

	searchMatchCount    = 14
	fallbackChunkLimit  = 10
	noInformationAnswer = "I couldn't find any relevant information in the selected documents."
)

// QueryUseCase embeds a question, runs threshold-gated similarity search
// with a non-vector fallback, reranks by query intent and asks the
// completion service for a grounded answer.
type QueryUseCase struct {
	embedder  ports.Embedder
	vectors   ports.VectorIndex
	chunks    ports.ChunkStore
	generator ports.AnswerGenerator
}

func NewQueryUseCase(
	embedder ports.Embedder,
	vectors ports.VectorIndex,
	chunks ports.ChunkStore,
	generator ports.AnswerGenerator,
) *QueryUseCase {
	return &QueryUseCase{
		embedder:  embedder,
		vectors:   vectors,
		chunks:    chunks,
		generator: generator,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, query string, documentIDs []string) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query is required"))
	}
	if len(documentIDs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("at least one document id is required"))
	}

	tableIntent := hasTableIntent(query)

	embeddingText := query
	threshold := defaultSimilarityThreshold
	if tableIntent {
		embeddingText = tableQueryMarker + " " + query
		threshold = tableSimilarityThreshold
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, embeddingText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	items, err := uc.vectors.Search(ctx, queryVector, documentIDs, threshold, searchMatchCount)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	fallbackUsed := false
	if len(items) == 0 {
		items, err = uc.fallbackLookup(ctx, documentIDs)
		if err != nil {
			return nil, err
		}
		fallbackUsed = len(items) > 0
	}

	if len(items) == 0 {
		return &domain.Answer{
			Text:    noInformationAnswer,
			Context: []domain.ContextItem{},
		}, nil
	}

	rerankByIntent(items, tableIntent)

	answerText, err := uc.generator.GenerateAnswer(ctx, query, items, tableIntent)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:         answerText,
		Context:      items,
		FallbackUsed: fallbackUsed,
	}, nil
}

// fallbackLookup fetches up to fallbackChunkLimit arbitrary chunks for
// the document set. Fallback items carry similarity 0.
func (uc *QueryUseCase) fallbackLookup(ctx context.Context, documentIDs []string) ([]domain.ContextItem, error) {
	chunks, err := uc.chunks.ListByDocuments(ctx, documentIDs, fallbackChunkLimit)
	if err != nil {
		return nil, fmt.Errorf("fallback lookup: %w", err)
	}

	items := make([]domain.ContextItem, 0, len(chunks))
	for _, chunk := range chunks {
		items = append(items, domain.ContextItem{
			Content:    chunk.Content,
			PageNumber: chunk.PageNumber,
			Similarity: 0,
			DocumentID: chunk.DocumentID,
			Section:    chunk.Section,
		})
	}
	return items, nil
}

func hasTableIntent(query string) bool {
	lowered := strings.ToLower(query)
	return strings.Contains(lowered, "table") || strings.Contains(lowered, "tables")
}
