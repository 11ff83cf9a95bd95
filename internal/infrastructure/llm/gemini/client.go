package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finsight/finsight/internal/core/domain"
	"github.com/finsight/finsight/internal/infrastructure/resilience"
)

const (
	defaultGenerationModel = "gemini-1.5-flash-8b"
	defaultEmbeddingModel  = "text-embedding-004"

	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"

	answerMaxOutputTokens = 2000
	answerTemperature     = 0.6
)

// Client talks to the Gemini generative-language REST API.
type Client struct {
	baseURL    string
	apiKey     string
	genModel   string
	embedModel string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Options struct {
	GenerationModel string
	EmbeddingModel  string
	RequestTimeout  time.Duration
	// RequestsPerMinute caps outbound calls; zero disables the limiter.
	RequestsPerMinute  int
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey string, options Options) *Client {
	genModel := options.GenerationModel
	if genModel == "" {
		genModel = defaultGenerationModel
	}
	embedModel := options.EmbeddingModel
	if embedModel == "" {
		embedModel = defaultEmbeddingModel
	}
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if options.RequestsPerMinute > 0 {
		perRequest := time.Minute / time.Duration(options.RequestsPerMinute)
		limiter = rate.NewLimiter(rate.Every(perRequest), options.RequestsPerMinute)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
	}
}

// Embedder implements document and query embeddings on top of Client.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

type embedContentRequest struct {
	Model    string  `json:"model"`
	Content  content `json:"content"`
	TaskType string  `json:"taskType"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]embedContentRequest, len(texts))
	for i, text := range texts {
		requests[i] = embedContentRequest{
			Model:    "models/" + e.client.embedModel,
			Content:  content{Parts: []part{{Text: text}}},
			TaskType: taskTypeDocument,
		}
	}

	var response struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", e.client.embedModel)
	if err := e.client.postJSON(ctx, path, map[string]any{"requests": requests}, &response, "embed_documents"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed_documents: got %d embeddings for %d inputs", len(response.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(response.Embeddings))
	for i, embedding := range response.Embeddings {
		vectors[i] = embedding.Values
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := embedContentRequest{
		Model:    "models/" + e.client.embedModel,
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: taskTypeQuery,
	}

	var response struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:embedContent", e.client.embedModel)
	if err := e.client.postJSON(ctx, path, request, &response, "embed_query"); err != nil {
		return nil, err
	}
	if len(response.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed_query: empty embedding result")
	}
	return response.Embedding.Values, nil
}

// Generator produces grounded answers on top of Client.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, query string, contextItems []domain.ContextItem, tableIntent bool) (string, error) {
	prompt := buildAnswerPrompt(query, contextItems, tableIntent)

	request := map[string]any{
		"contents": []map[string]any{
			{"parts": []part{{Text: prompt}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": answerMaxOutputTokens,
			"temperature":     answerTemperature,
		},
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", g.client.genModel)
	if err := g.client.postJSON(ctx, path, request, &response, "generate_answer"); err != nil {
		return "", err
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate_answer: empty completion result")
	}

	var text strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return strings.TrimSpace(text.String()), nil
}
