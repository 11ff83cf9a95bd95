package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/finsight/finsight/internal/core/domain"
)

type removeRepoFake struct {
	ingestRepoFake
	doc     *domain.Document
	getErr  error
	deleted []string
}

func (f *removeRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *removeRepoFake) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type removeChunkStoreFake struct {
	chunkStoreFake
	deletedDocs []string
}

func (f *removeChunkStoreFake) DeleteByDocument(_ context.Context, documentID string) error {
	f.deletedDocs = append(f.deletedDocs, documentID)
	return nil
}

type removeVectorFake struct {
	vectorIndexFake
	deletedDocs []string
	deleteErr   error
}

func (f *removeVectorFake) DeleteByDocument(_ context.Context, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedDocs = append(f.deletedDocs, documentID)
	return nil
}

func TestRemoveDeletesEverywhere(t *testing.T) {
	repo := &removeRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_report.pdf"}}
	chunks := &removeChunkStoreFake{}
	vectors := &removeVectorFake{}
	storage := &storageFake{}

	uc := NewRemoveDocumentUseCase(repo, chunks, vectors, storage)
	if err := uc.Remove(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if len(vectors.deletedDocs) != 1 || vectors.deletedDocs[0] != "doc-1" {
		t.Fatalf("expected vector points removed, got %v", vectors.deletedDocs)
	}
	if len(chunks.deletedDocs) != 1 || chunks.deletedDocs[0] != "doc-1" {
		t.Fatalf("expected chunk rows removed, got %v", chunks.deletedDocs)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "doc-1_report.pdf" {
		t.Fatalf("expected stored file removed, got %v", storage.deleted)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "doc-1" {
		t.Fatalf("expected metadata row removed, got %v", repo.deleted)
	}
}

func TestRemoveStopsWhenDocumentMissing(t *testing.T) {
	notFound := domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no row"))
	repo := &removeRepoFake{getErr: notFound}
	vectors := &removeVectorFake{}

	uc := NewRemoveDocumentUseCase(repo, &removeChunkStoreFake{}, vectors, &storageFake{})
	if err := uc.Remove(context.Background(), "missing"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if len(vectors.deletedDocs) != 0 {
		t.Fatalf("nothing should be deleted for a missing document")
	}
}

func TestRemoveKeepsRowOnVectorDeleteFailure(t *testing.T) {
	repo := &removeRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "p"}}
	vectors := &removeVectorFake{deleteErr: errors.New("vector store unreachable")}

	uc := NewRemoveDocumentUseCase(repo, &removeChunkStoreFake{}, vectors, &storageFake{})
	if err := uc.Remove(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("metadata row must stay until cleanup succeeds")
	}
}
