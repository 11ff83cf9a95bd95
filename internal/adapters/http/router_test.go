package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/observability/metrics"
)

type uploaderFake struct {
	filename string
	doc      *domain.Document
	err      error
}

func (f *uploaderFake) Upload(_ context.Context, filename string, _ io.Reader) (*domain.Document, error) {
	f.filename = filename
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type ingestorFake struct {
	documentID string
	pages      []domain.Page
	err        error
}

func (f *ingestorFake) IngestPages(_ context.Context, documentID string, pages []domain.Page) error {
	f.documentID = documentID
	f.pages = pages
	return f.err
}

type queryFake struct {
	query       string
	documentIDs []string
	answer      *domain.Answer
	err         error
}

func (f *queryFake) Answer(_ context.Context, query string, documentIDs []string) (*domain.Answer, error) {
	f.query = query
	f.documentIDs = documentIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type readerFake struct {
	doc  *domain.Document
	docs []domain.Document
	err  error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *readerFake) List(context.Context) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type removerFake struct {
	removed []string
	err     error
}

func (f *removerFake) Remove(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, documentID)
	return nil
}

type chatServiceFake struct {
	chat     *domain.Chat
	messages []domain.ChatMessage
	message  *domain.ChatMessage
	err      error
}

func (f *chatServiceFake) CreateChat(_ context.Context, title string, documentIDs []string) (*domain.Chat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chat, nil
}

func (f *chatServiceFake) GetChat(context.Context, string) (*domain.Chat, []domain.ChatMessage, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.chat, f.messages, nil
}

func (f *chatServiceFake) ListChats(context.Context) ([]domain.Chat, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.chat == nil {
		return nil, nil
	}
	return []domain.Chat{*f.chat}, nil
}

func (f *chatServiceFake) Ask(context.Context, string, string) (*domain.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.message, nil
}

func (f *chatServiceFake) DeleteChat(context.Context, string) error {
	return f.err
}

type routerFakes struct {
	uploader *uploaderFake
	ingestor *ingestorFake
	queries  *queryFake
	reader   *readerFake
	remover  *removerFake
	chats    *chatServiceFake
}

func newTestRouter() (*Router, *routerFakes) {
	fakes := &routerFakes{
		uploader: &uploaderFake{doc: &domain.Document{ID: "doc-1", Filename: "report.pdf"}},
		ingestor: &ingestorFake{},
		queries:  &queryFake{answer: &domain.Answer{Text: "ok", Context: []domain.ContextItem{}}},
		reader:   &readerFake{doc: &domain.Document{ID: "doc-1"}},
		remover:  &removerFake{},
		chats:    &chatServiceFake{chat: &domain.Chat{ID: "chat-1", Title: "t"}},
	}
	router := NewRouter("api", fakes.uploader, fakes.ingestor, fakes.queries, fakes.reader, fakes.remover, fakes.chats, nil)
	return router, fakes
}

func TestUploadDocumentAccepted(t *testing.T) {
	router, fakes := newTestRouter()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fileWriter, err := writer.CreateFormFile("file", "Annual Report.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fileWriter.Write([]byte("%PDF-1.7")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if fakes.uploader.filename != "Annual Report.pdf" {
		t.Fatalf("expected original filename forwarded, got %q", fakes.uploader.filename)
	}

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["status"] != "pending" {
		t.Fatalf("expected derived pending status, got %v", payload["status"])
	}
}

func TestUploadDocumentRequiresMultipartFile(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("{}"))
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestIngestPagesRoute(t *testing.T) {
	router, fakes := newTestRouter()

	body := `{"pages":[{"pageNumber":1,"text":"Total debt was $500 million."}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/pages", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if fakes.ingestor.documentID != "doc-1" || len(fakes.ingestor.pages) != 1 {
		t.Fatalf("expected pages handed to ingestor, got %q / %d", fakes.ingestor.documentID, len(fakes.ingestor.pages))
	}
	if fakes.ingestor.pages[0].PageNumber != 1 {
		t.Fatalf("unexpected page %+v", fakes.ingestor.pages[0])
	}
}

func TestQueryRouteForwardsDocumentIDs(t *testing.T) {
	router, fakes := newTestRouter()
	fakes.queries.answer = &domain.Answer{
		Text:    "Revenue grew.",
		Context: []domain.ContextItem{{Content: "rev", DocumentID: "doc-1", Similarity: 0.8}},
	}

	body := `{"query":"How did revenue develop?","documentIds":["doc-1","doc-2"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(fakes.queries.documentIDs) != 2 {
		t.Fatalf("expected document ids forwarded, got %v", fakes.queries.documentIDs)
	}

	var payload struct {
		Answer  string `json:"answer"`
		Context []struct {
			DocumentID string `json:"documentId"`
		} `json:"context"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Answer != "Revenue grew." || len(payload.Context) != 1 || payload.Context[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query is required")), http.StatusBadRequest},
		{"document not found", domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no row")), http.StatusNotFound},
		{"temporary", domain.WrapError(domain.ErrTemporary, "embed", errors.New("quota")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, fakes := newTestRouter()
			fakes.queries.err = tc.err

			body := `{"query":"q","documentIds":["doc-1"]}`
			req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(body))
			recorder := httptest.NewRecorder()

			router.Handler().ServeHTTP(recorder, req)

			if recorder.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, recorder.Code)
			}
		})
	}
}

func TestDeleteDocumentRoute(t *testing.T) {
	router, fakes := newTestRouter()

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil)
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
	if len(fakes.remover.removed) != 1 || fakes.remover.removed[0] != "doc-1" {
		t.Fatalf("expected doc-1 removed, got %v", fakes.remover.removed)
	}
}

func TestChatMessageRoute(t *testing.T) {
	router, fakes := newTestRouter()
	fakes.chats.message = &domain.ChatMessage{ID: "msg-1", ChatID: "chat-1", Answer: "ok"}

	body := `{"query":"What is the total debt?"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chats/chat-1/messages", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload domain.ChatMessage
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != "msg-1" {
		t.Fatalf("unexpected message %+v", payload)
	}
}

func TestQueryRouteRecordsFallbackMetric(t *testing.T) {
	fakes := &routerFakes{
		uploader: &uploaderFake{},
		ingestor: &ingestorFake{},
		queries: &queryFake{answer: &domain.Answer{
			Text:         "From the documents.",
			Context:      []domain.ContextItem{{Content: "debt overview", DocumentID: "doc-1"}},
			FallbackUsed: true,
		}},
		reader:  &readerFake{},
		remover: &removerFake{},
		chats:   &chatServiceFake{},
	}
	router := NewRouter("api", fakes.uploader, fakes.ingestor, fakes.queries, fakes.reader, fakes.remover, fakes.chats, metrics.NewHTTPServerMetrics("api"))
	handler := router.Handler()

	body := `{"query":"What does the filing say?","documentIds":["doc-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	handler.ServeHTTP(metricsRec, metricsReq)

	exposition := metricsRec.Body.String()
	if !strings.Contains(exposition, `finsight_retrieval_fallback_total{endpoint="/v1/query",service="api"} 1`) {
		t.Fatalf("expected fallback counter in exposition, got:\n%s", exposition)
	}
}

func TestChatMessageHistoryRoute(t *testing.T) {
	router, fakes := newTestRouter()
	fakes.chats.messages = []domain.ChatMessage{
		{ID: "msg-1", ChatID: "chat-1", Query: "q1", Answer: "a1"},
		{ID: "msg-2", ChatID: "chat-1", Query: "q2", Answer: "a2"},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/chats/chat-1/messages", nil)
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload []domain.ChatMessage
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload) != 2 || payload[0].ID != "msg-1" || payload[1].ID != "msg-2" {
		t.Fatalf("unexpected history %+v", payload)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()

	router.Handler().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if recorder.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}
