package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finsight/finsight/internal/core/domain"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	docIDsJSON, err := json.Marshal(chat.DocumentIDs)
	if err != nil {
		return fmt.Errorf("marshal document ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO chats (id, title, document_ids, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
`, chat.ID, chat.Title, docIDsJSON, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, document_ids, created_at, updated_at
FROM chats
WHERE id = $1
`, id)

	var chat domain.Chat
	var docIDsRaw []byte
	if err := row.Scan(&chat.ID, &chat.Title, &docIDsRaw, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrChatNotFound, "get chat", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	if err := json.Unmarshal(docIDsRaw, &chat.DocumentIDs); err != nil {
		return nil, fmt.Errorf("unmarshal document ids: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) ListChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, document_ids, created_at, updated_at
FROM chats
ORDER BY updated_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []domain.Chat
	for rows.Next() {
		var chat domain.Chat
		var docIDsRaw []byte
		if err := rows.Scan(&chat.ID, &chat.Title, &docIDsRaw, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chat row: %w", err)
		}
		if err := json.Unmarshal(docIDsRaw, &chat.DocumentIDs); err != nil {
			return nil, fmt.Errorf("unmarshal document ids: %w", err)
		}
		out = append(out, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat rows: %w", err)
	}
	return out, nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, message domain.ChatMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	contextJSON, err := json.Marshal(emptyContextIfNil(message.Context))
	if err != nil {
		return fmt.Errorf("marshal message context: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO chat_messages (id, chat_id, query, answer, context, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, message.ID, message.ChatID, message.Query, message.Answer, contextJSON, message.CreatedAt); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE chats SET updated_at = $2 WHERE id = $1
`, message.ChatID, message.CreatedAt); err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message tx: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, chat_id, query, answer, context, created_at
FROM chat_messages
WHERE chat_id = $1
ORDER BY created_at ASC
`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var contextRaw []byte
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Query, &msg.Answer, &contextRaw, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if err := json.Unmarshal(contextRaw, &msg.Context); err != nil {
			return nil, fmt.Errorf("unmarshal message context: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return out, nil
}

func (r *ChatRepository) DeleteChat(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete chat rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrChatNotFound, "delete chat", fmt.Errorf("id %s", id))
	}
	return nil
}

func emptyContextIfNil(items []domain.ContextItem) []domain.ContextItem {
	if items == nil {
		return []domain.ContextItem{}
	}
	return items
}
