package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/core/ports"
)

const defaultChatTitle = "New chat"

// ChatUseCase keeps per-chat history and routes questions to the query
// service with the chat's document set.
type ChatUseCase struct {
	chats   ports.ChatStore
	queries ports.QueryService
}

func NewChatUseCase(chats ports.ChatStore, queries ports.QueryService) *ChatUseCase {
	return &ChatUseCase{chats: chats, queries: queries}
}

func (uc *ChatUseCase) CreateChat(ctx context.Context, title string, documentIDs []string) (*domain.Chat, error) {
	if len(documentIDs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create chat", errors.New("at least one document id is required"))
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultChatTitle
	}

	now := time.Now().UTC()
	chat := &domain.Chat{
		ID:          uuid.NewString(),
		Title:       title,
		DocumentIDs: documentIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.chats.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (uc *ChatUseCase) GetChat(ctx context.Context, id string) (*domain.Chat, []domain.ChatMessage, error) {
	chat, err := uc.chats.GetChat(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get chat: %w", err)
	}
	messages, err := uc.chats.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list chat messages: %w", err)
	}
	return chat, messages, nil
}

func (uc *ChatUseCase) ListChats(ctx context.Context) ([]domain.Chat, error) {
	chats, err := uc.chats.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

// Ask answers the question against the chat's document set and appends
// the exchange to the chat history.
func (uc *ChatUseCase) Ask(ctx context.Context, chatID, query string) (*domain.ChatMessage, error) {
	chat, err := uc.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}

	answer, err := uc.queries.Answer(ctx, query, chat.DocumentIDs)
	if err != nil {
		return nil, err
	}

	message := domain.ChatMessage{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		Query:     query,
		Answer:    answer.Text,
		Context:   answer.Context,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.chats.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("append chat message: %w", err)
	}
	return &message, nil
}

func (uc *ChatUseCase) DeleteChat(ctx context.Context, id string) error {
	if err := uc.chats.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}
