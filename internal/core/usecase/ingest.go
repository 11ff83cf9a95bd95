package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/core/ports"
)

const defaultEmbedBatchSize = 100

// IngestPagesUseCase drives chunking per page, embeds chunk batches and
// persists chunk rows plus their vectors. A failed batch aborts the whole
// document; already-committed batches stay persisted.
type IngestPagesUseCase struct {
	repo      ports.DocumentRepository
	splitter  ports.Splitter
	embedder  ports.Embedder
	chunks    ports.ChunkStore
	vectors   ports.VectorIndex
	batchSize int
}

func NewIngestPagesUseCase(
	repo ports.DocumentRepository,
	splitter ports.Splitter,
	embedder ports.Embedder,
	chunks ports.ChunkStore,
	vectors ports.VectorIndex,
	batchSize int,
) *IngestPagesUseCase {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	return &IngestPagesUseCase{
		repo:      repo,
		splitter:  splitter,
		embedder:  embedder,
		chunks:    chunks,
		vectors:   vectors,
		batchSize: batchSize,
	}
}

func (uc *IngestPagesUseCase) IngestPages(ctx context.Context, documentID string, pages []domain.Page) error {
	if strings.TrimSpace(documentID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "ingest pages", errors.New("document id is required"))
	}
	if len(pages) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "ingest pages", errors.New("at least one page is required"))
	}

	if err := uc.repo.BeginProcessing(ctx, documentID); err != nil {
		return fmt.Errorf("begin processing: %w", err)
	}

	if err := uc.ingestAllPages(ctx, documentID, pages); err != nil {
		if failErr := uc.repo.FinishProcessing(ctx, documentID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; record processing error: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.FinishProcessing(ctx, documentID, ""); err != nil {
		return fmt.Errorf("finish processing: %w", err)
	}
	return nil
}

func (uc *IngestPagesUseCase) ingestAllPages(ctx context.Context, documentID string, pages []domain.Page) error {
	for _, page := range pages {
		drafts := uc.splitter.SplitPage(page.Text)
		if len(drafts) == 0 {
			continue
		}

		for start := 0; start < len(drafts); start += uc.batchSize {
			end := min(start+uc.batchSize, len(drafts))
			if err := uc.processBatch(ctx, documentID, page.PageNumber, drafts[start:end]); err != nil {
				return fmt.Errorf("page %d: %w", page.PageNumber, err)
			}
		}
	}
	return nil
}

func (uc *IngestPagesUseCase) processBatch(ctx context.Context, documentID string, pageNumber int, drafts []domain.ChunkDraft) error {
	composed := make([]string, len(drafts))
	for i, draft := range drafts {
		composed[i] = composeEmbeddingText(draft)
	}

	vectors, err := uc.embedder.EmbedDocuments(ctx, composed)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(drafts) {
		return fmt.Errorf("embed batch: vectors/chunks mismatch: %d/%d", len(vectors), len(drafts))
	}

	// The embedding service returns vectors in request order; pair them
	// with drafts by position before anything can reorder either side.
	chunks := make([]domain.Chunk, len(drafts))
	for i, draft := range drafts {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Content:    draft.Content,
			Section:    draft.Section,
			Metrics:    draft.Metrics,
			Keywords:   draft.Keywords,
			PageNumber: pageNumber,
		}
	}

	if err := uc.chunks.InsertBatch(ctx, chunks); err != nil {
		return fmt.Errorf("insert chunk batch: %w", err)
	}
	if err := uc.vectors.IndexChunks(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("index chunk batch: %w", err)
	}
	return nil
}

// composeEmbeddingText interleaves the extracted financial signal with
// the raw content so embeddings are biased toward it.
func composeEmbeddingText(draft domain.ChunkDraft) string {
	return fmt.Sprintf(
		"SECTION: %s\nMETRICS: %s\nKEYWORDS: %s\nCONTENT: %s",
		draft.Section,
		strings.Join(draft.Metrics, ", "),
		strings.Join(draft.Keywords, ", "),
		draft.Content,
	)
}
