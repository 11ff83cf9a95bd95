package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finsight/finsight/internal/core/domain"
)

func TestEmbedDocumentsBatchesWithDocumentTaskType(t *testing.T) {
	var captured struct {
		Requests []embedContentRequest `json:"requests"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":batchEmbedContents") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[0.1,0.2]},{"values":[0.3,0.4]}]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "key", Options{}))
	vectors, err := embedder.EmbedDocuments(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedDocuments() error = %v", err)
	}

	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors %v", vectors)
	}
	if len(captured.Requests) != 2 {
		t.Fatalf("expected 2 batched requests, got %d", len(captured.Requests))
	}
	for _, request := range captured.Requests {
		if request.TaskType != "RETRIEVAL_DOCUMENT" {
			t.Fatalf("expected document task type, got %q", request.TaskType)
		}
	}
	if captured.Requests[0].Content.Parts[0].Text != "first" {
		t.Fatalf("expected request order preserved, got %+v", captured.Requests)
	}
}

func TestEmbedQueryUsesQueryTaskType(t *testing.T) {
	var captured embedContentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":embedContent") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.5,0.6]}}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "key", Options{}))
	vector, err := embedder.EmbedQuery(context.Background(), "[FINANCIAL TABLE] show tables")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}

	if len(vector) != 2 || vector[0] != 0.5 {
		t.Fatalf("unexpected vector %v", vector)
	}
	if captured.TaskType != "RETRIEVAL_QUERY" {
		t.Fatalf("expected query task type, got %q", captured.TaskType)
	}
	if captured.Content.Parts[0].Text != "[FINANCIAL TABLE] show tables" {
		t.Fatalf("unexpected embedded text %q", captured.Content.Parts[0].Text)
	}
}

func TestGenerateAnswerBuildsAnalystPrompt(t *testing.T) {
	var capturedPrompt string
	var capturedConfig map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		var payload struct {
			Contents []struct {
				Parts []part `json:"parts"`
			} `json:"contents"`
			GenerationConfig map[string]any `json:"generationConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		capturedPrompt = payload.Contents[0].Parts[0].Text
		capturedConfig = payload.GenerationConfig
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Revenue rose 12%."}]}}]}`))
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "key", Options{}))
	answer, err := generator.GenerateAnswer(context.Background(), "How did revenue develop?", []domain.ContextItem{
		{DocumentID: "doc-1", Content: "Revenue was $500 million."},
	}, false)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}

	if answer != "Revenue rose 12%." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if !strings.Contains(capturedPrompt, "From document doc-1:\nRevenue was $500 million.") {
		t.Fatalf("expected context snippet in prompt, got %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "Question: How did revenue develop?") {
		t.Fatalf("expected question in prompt, got %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "Directly answers the question") {
		t.Fatalf("expected narrative instructions for non-table query, got %s", capturedPrompt)
	}
	if capturedConfig["maxOutputTokens"].(float64) != 2000 || capturedConfig["temperature"].(float64) != 0.6 {
		t.Fatalf("unexpected generation config %v", capturedConfig)
	}
}

func TestGenerateAnswerTableIntentSwitchesInstructions(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Contents []struct {
				Parts []part `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		capturedPrompt = payload.Contents[0].Parts[0].Text
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "key", Options{}))
	_, err := generator.GenerateAnswer(context.Background(), "show the table", nil, true)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}

	if !strings.Contains(capturedPrompt, "explaining the financial tables") {
		t.Fatalf("expected table instructions, got %s", capturedPrompt)
	}
	if strings.Contains(capturedPrompt, "Directly answers the question") {
		t.Fatalf("table prompt must not carry narrative instructions")
	}
}

func TestEmbedDocumentsIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "key", Options{}))
	_, err := embedder.EmbedDocuments(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("429 should surface as a temporary error, got %v", err)
	}
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[0.1]}]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "key", Options{}))
	_, err := embedder.EmbedDocuments(context.Background(), []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "2 inputs") {
		t.Fatalf("expected count mismatch error, got %v", err)
	}
}
