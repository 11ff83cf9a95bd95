package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/core/ports"
	"github.com/finsight/finsight/internal/observability/metrics"
)

type Router struct {
	service  string
	uploader ports.DocumentUploader
	ingestor ports.PageIngestor
	queries  ports.QueryService
	reader   ports.DocumentReader
	remover  ports.DocumentRemover
	chats    ports.ChatService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	service string,
	uploader ports.DocumentUploader,
	ingestor ports.PageIngestor,
	queries ports.QueryService,
	reader ports.DocumentReader,
	remover ports.DocumentRemover,
	chats ports.ChatService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		service:  service,
		uploader: uploader,
		ingestor: ingestor,
		queries:  queries,
		reader:   reader,
		remover:  remover,
		chats:    chats,
		metrics:  httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documents)
	mux.HandleFunc("/v1/documents/", rt.documentSubtree)
	mux.HandleFunc("/v1/query", rt.query)
	mux.HandleFunc("/v1/chats", rt.chatCollection)
	mux.HandleFunc("/v1/chats/", rt.chatSubtree)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// documentPayload adds the derived status to the stored document state.
type documentPayload struct {
	domain.Document
	Status domain.DocumentStatus `json:"status"`
}

func toDocumentPayload(doc *domain.Document) documentPayload {
	return documentPayload{Document: *doc, Status: doc.Status()}
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.uploader.Upload(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toDocumentPayload(doc))
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.reader.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]documentPayload, 0, len(docs))
	for i := range docs {
		payload = append(payload, toDocumentPayload(&docs[i]))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (rt *Router) documentSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		rt.getDocument(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		rt.deleteDocument(w, r, id)
	case sub == "pages" && r.Method == http.MethodPost:
		rt.ingestPages(w, r, id)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentPayload(doc))
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.remover.Remove(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) ingestPages(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Pages []domain.Page `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if err := rt.ingestor.IngestPages(r.Context(), id, req.Pages); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "ingested"})
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query       string   `json:"query"`
		DocumentIDs []string `json:"documentIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.queries.Answer(r.Context(), req.Query, req.DocumentIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		tableIntent := strings.Contains(strings.ToLower(req.Query), "table")
		rt.metrics.RecordQueryObservation(rt.service, "/v1/query", len(answer.Context), tableIntent, time.Since(start))
		if answer.FallbackUsed {
			rt.metrics.RecordFallbackLookup(rt.service, "/v1/query")
		}
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) chatCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Title       string   `json:"title"`
			DocumentIDs []string `json:"documentIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		chat, err := rt.chats.CreateChat(r.Context(), req.Title, req.DocumentIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, chat)
	case http.MethodGet:
		chats, err := rt.chats.ListChats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chats)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) chatSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/chats/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat id is required"})
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		chat, messages, err := rt.chats.GetChat(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"chat":     chat,
			"messages": messages,
		})
	case sub == "" && r.Method == http.MethodDelete:
		if err := rt.chats.DeleteChat(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case sub == "messages" && r.Method == http.MethodGet:
		_, messages, err := rt.chats.GetChat(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if messages == nil {
			messages = []domain.ChatMessage{}
		}
		writeJSON(w, http.StatusOK, messages)
	case sub == "messages" && r.Method == http.MethodPost:
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		message, err := rt.chats.Ask(r.Context(), id, req.Query)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, message)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
