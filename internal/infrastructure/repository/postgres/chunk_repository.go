package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finsight/finsight/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// InsertBatch writes a chunk batch in one transaction; a failed insert
// rolls back the whole batch.
func (r *ChunkRepository) InsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO document_chunks (id, document_id, content, section_type, financial_metrics, keywords, page_number)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metricsJSON, err := json.Marshal(emptyIfNil(chunk.Metrics))
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		keywordsJSON, err := json.Marshal(emptyIfNil(chunk.Keywords))
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Content, string(chunk.Section),
			metricsJSON, keywordsJSON, chunk.PageNumber,
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

// ListByDocuments serves the non-vector fallback lookup.
func (r *ChunkRepository) ListByDocuments(ctx context.Context, documentIDs []string, limit int) ([]domain.Chunk, error) {
	if len(documentIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	placeholders := make([]string, len(documentIDs))
	args := make([]any, 0, len(documentIDs)+1)
	for i, id := range documentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT id, document_id, content, section_type, financial_metrics, keywords, page_number
FROM document_chunks
WHERE document_id IN (%s)
LIMIT $%d
`, strings.Join(placeholders, ","), len(documentIDs)+1)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var section string
		var metricsRaw, keywordsRaw []byte
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.Content, &section,
			&metricsRaw, &keywordsRaw, &chunk.PageNumber,
		); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		if err := json.Unmarshal(metricsRaw, &chunk.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
		if err := json.Unmarshal(keywordsRaw, &chunk.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords: %w", err)
		}
		chunk.Section = domain.Section(section)
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
