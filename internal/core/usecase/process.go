package usecase

import (
	"context"
	"fmt"

	"github.com/finsight/finsight/internal/core/ports"
)

// ProcessDocumentUseCase is the worker-side pipeline for an uploaded
// file: extract per-page text, record the page count, then hand the
// pages to the ingestion orchestrator.
type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.PageExtractor
	ingestor  ports.PageIngestor
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.PageExtractor,
	ingestor ports.PageIngestor,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		ingestor:  ingestor,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	pages, err := uc.extractor.ExtractPages(ctx, doc)
	if err != nil {
		extractErr := fmt.Errorf("extract pages: %w", err)
		if failErr := uc.repo.FinishProcessing(ctx, documentID, extractErr.Error()); failErr != nil {
			return fmt.Errorf("%w; record processing error: %v", extractErr, failErr)
		}
		return extractErr
	}

	if err := uc.repo.SetPageCount(ctx, documentID, len(pages)); err != nil {
		return fmt.Errorf("set page count: %w", err)
	}

	return uc.ingestor.IngestPages(ctx, documentID, pages)
}
