package ports

import (
	"context"
	"io"

	"github.com/finsight/finsight/internal/core/domain"
)

// DocumentUploader is the inbound contract for document upload orchestration.
type DocumentUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.Document, error)
}

// PageIngestor is the inbound contract for ingesting pre-extracted page text.
type PageIngestor interface {
	IngestPages(ctx context.Context, documentID string, pages []domain.Page) error
}

// DocumentProcessor is the inbound contract for asynchronous processing of an
// uploaded document (extract pages, then ingest).
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QueryService answers a natural-language question against a document set.
type QueryService interface {
	Answer(ctx context.Context, query string, documentIDs []string) (*domain.Answer, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// DocumentRemover deletes a document together with its chunks, vector points
// and stored file.
type DocumentRemover interface {
	Remove(ctx context.Context, documentID string) error
}

// ChatService manages chats and runs their questions against the chat's
// document set.
type ChatService interface {
	CreateChat(ctx context.Context, title string, documentIDs []string) (*domain.Chat, error)
	GetChat(ctx context.Context, id string) (*domain.Chat, []domain.ChatMessage, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
	Ask(ctx context.Context, chatID, query string) (*domain.ChatMessage, error)
	DeleteChat(ctx context.Context, id string) error
}
