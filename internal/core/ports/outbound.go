package ports

import (
	"context"
	"io"

	"github.com/finsight/finsight/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	// BeginProcessing clears the processed flag and any previous error.
	BeginProcessing(ctx context.Context, id string) error
	// FinishProcessing sets processed=true; errMessage empty means success.
	FinishProcessing(ctx context.Context, id string, errMessage string) error
	SetPageCount(ctx context.Context, id string, pageCount int) error
	Delete(ctx context.Context, id string) error
}

// ChunkStore persists chunk rows and serves the non-vector fallback lookup.
// InsertBatch is all-or-nothing per batch.
type ChunkStore interface {
	InsertBatch(ctx context.Context, chunks []domain.Chunk) error
	ListByDocuments(ctx context.Context, documentIDs []string, limit int) ([]domain.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Embedder builds vectors for composed chunk text and query text. Results
// are returned in request order, one vector per input.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores chunk vectors and performs threshold-gated similarity
// search scoped to a document-ID set. The threshold is inclusive.
type VectorIndex interface {
	IndexChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, documentIDs []string, threshold float64, limit int) ([]domain.ContextItem, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Splitter turns one cleaned page of text into annotated chunk drafts.
type Splitter interface {
	SplitPage(text string) []domain.ChunkDraft
}

// AnswerGenerator builds the grounded prompt for the ranked context and
// invokes the completion service. Context order must be preserved into
// the prompt.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query string, contextItems []domain.ContextItem, tableIntent bool) (string, error)
}

// ObjectStorage stores original uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes document-processing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PageExtractor extracts per-page text from a stored document.
type PageExtractor interface {
	ExtractPages(ctx context.Context, doc *domain.Document) ([]domain.Page, error)
}

// ChatStore persists chats and their message history.
type ChatStore interface {
	CreateChat(ctx context.Context, chat *domain.Chat) error
	GetChat(ctx context.Context, id string) (*domain.Chat, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
	AppendMessage(ctx context.Context, message domain.ChatMessage) error
	ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error)
	DeleteChat(ctx context.Context, id string) error
}
