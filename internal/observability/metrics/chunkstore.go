package metrics

import (
	"context"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/core/ports"
)

// InstrumentedChunkStore counts committed chunk rows per section on top
// of the wrapped store. Reads and deletes pass through untouched.
type InstrumentedChunkStore struct {
	inner   ports.ChunkStore
	worker  *WorkerMetrics
	service string
}

func InstrumentChunkStore(inner ports.ChunkStore, worker *WorkerMetrics, service string) *InstrumentedChunkStore {
	return &InstrumentedChunkStore{
		inner:   inner,
		worker:  worker,
		service: service,
	}
}

func (s *InstrumentedChunkStore) InsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	if err := s.inner.InsertBatch(ctx, chunks); err != nil {
		return err
	}

	counts := make(map[domain.Section]int, 4)
	for _, chunk := range chunks {
		counts[chunk.Section]++
	}
	for section, count := range counts {
		s.worker.AddChunksIngested(s.service, string(section), count)
	}
	return nil
}

func (s *InstrumentedChunkStore) ListByDocuments(ctx context.Context, documentIDs []string, limit int) ([]domain.Chunk, error) {
	return s.inner.ListByDocuments(ctx, documentIDs, limit)
}

func (s *InstrumentedChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	return s.inner.DeleteByDocument(ctx, documentID)
}
