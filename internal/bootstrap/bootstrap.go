package bootstrap

import (
	"context"
	"fmt"

	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/core/ports"
	"github.com/finsight/finsight/internal/core/usecase"
	"github.com/finsight/finsight/internal/infrastructure/chunking"
	"github.com/finsight/finsight/internal/infrastructure/extractor/pdfpages"
	"github.com/finsight/finsight/internal/infrastructure/llm/gemini"
	"github.com/finsight/finsight/internal/infrastructure/queue/nats"
	"github.com/finsight/finsight/internal/infrastructure/repository/postgres"
	"github.com/finsight/finsight/internal/infrastructure/resilience"
	"github.com/finsight/finsight/internal/infrastructure/storage/localfs"
	"github.com/finsight/finsight/internal/infrastructure/vector/qdrant"
	"github.com/finsight/finsight/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	UploadUC  ports.DocumentUploader
	IngestUC  ports.PageIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService
	RemoveUC  ports.DocumentRemover
	ChatUC    ports.ChatService

	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	workerMetrics := metrics.NewWorkerMetrics("worker")
	chunks := metrics.InstrumentChunkStore(postgres.NewChunkRepository(db), workerMetrics, "worker")
	chats := postgres.NewChatRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	geminiClient := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, gemini.Options{
		GenerationModel:    cfg.GeminiGenModel,
		EmbeddingModel:     cfg.GeminiEmbedModel,
		RequestsPerMinute:  cfg.GeminiRequestsPerMinute,
		ResilienceExecutor: executor,
	})
	embedder := gemini.NewEmbedder(geminiClient)
	generator := gemini.NewGenerator(geminiClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	splitter := chunking.NewFinancialSplitter()
	extractor := pdfpages.NewExtractor(storage)

	uploadUC := usecase.NewUploadDocumentUseCase(repo, storage, queue)
	ingestUC := usecase.NewIngestPagesUseCase(repo, splitter, embedder, chunks, vectorDB, cfg.EmbedBatchSize)
	processUC := usecase.NewProcessDocumentUseCase(repo, extractor, ingestUC)
	queryUC := usecase.NewQueryUseCase(embedder, vectorDB, chunks, generator)
	removeUC := usecase.NewRemoveDocumentUseCase(repo, chunks, vectorDB, storage)
	chatUC := usecase.NewChatUseCase(chats, queryUC)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		UploadUC:  uploadUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		RemoveUC:  removeUC,
		ChatUC:    chatUC,

		WorkerMetrics: workerMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
