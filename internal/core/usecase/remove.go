package usecase

import (
	"context"
	"fmt"

	"github.com/finsight/finsight/internal/core/ports"
)

// RemoveDocumentUseCase deletes a document with its chunks, vector
// points and stored source file.
type RemoveDocumentUseCase struct {
	repo    ports.DocumentRepository
	chunks  ports.ChunkStore
	vectors ports.VectorIndex
	storage ports.ObjectStorage
}

func NewRemoveDocumentUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkStore,
	vectors ports.VectorIndex,
	storage ports.ObjectStorage,
) *RemoveDocumentUseCase {
	return &RemoveDocumentUseCase{
		repo:    repo,
		chunks:  chunks,
		vectors: vectors,
		storage: storage,
	}
}

func (uc *RemoveDocumentUseCase) Remove(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete vector points: %w", err)
	}
	if err := uc.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunk rows: %w", err)
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}
	if err := uc.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document row: %w", err)
	}
	return nil
}
