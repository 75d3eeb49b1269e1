package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronov/kbengine/internal/config"
	"github.com/avoronov/kbengine/internal/core/domain"
	"github.com/avoronov/kbengine/internal/core/ports"
	"github.com/avoronov/kbengine/internal/core/usecase"
	"github.com/avoronov/kbengine/internal/infrastructure/chunking"
	"github.com/avoronov/kbengine/internal/infrastructure/embedding/ollama"
	"github.com/avoronov/kbengine/internal/infrastructure/queue/nats"
	"github.com/avoronov/kbengine/internal/infrastructure/repository/postgres"
	"github.com/avoronov/kbengine/internal/infrastructure/resilience"
	"github.com/avoronov/kbengine/internal/infrastructure/storage/localfs"
	"github.com/avoronov/kbengine/internal/infrastructure/vector/flat"
	"github.com/avoronov/kbengine/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.EngineMetrics

	Queue    *nats.Queue
	Docs     ports.DocumentRepository
	Tenants  ports.TenantDirectory
	Storage  ports.BlobStorage
	Embedder ports.Embedder

	IngestUC   ports.DocumentIngestor
	RetrieveUC ports.ContextRetriever
	PromptUC   ports.PromptBuilder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	chunks := postgres.NewChunkRepository(db)
	tenants := postgres.NewTenantRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	if err := chunks.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure chunks schema: %w", err)
	}
	if err := tenants.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure tenants schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder := ollama.NewCapability(ctx, ollama.Config{
		BaseURL:           cfg.OllamaURL,
		Model:             cfg.OllamaEmbedModel,
		Dimension:         cfg.EmbedDimension,
		RequestTimeout:    time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
		RequestsPerSecond: float64(cfg.EmbedRequestsPerSecond),
		Burst:             cfg.EmbedBurst,
		Executor:          executor,
	})

	engineMetrics := metrics.NewEngineMetrics(service)
	engineMetrics.SetEmbedderAvailable(embedder.Available())

	chunker := chunking.NewWordSplitter(cfg.ChunkMaxWords)
	buildIndex := ports.VectorIndexBuilder(func(dim int, items []domain.Chunk) ports.VectorIndex {
		return flat.Build(dim, items)
	})

	ingestUC := usecase.NewIngestDocumentUseCase(docs, chunks, storage, chunker, embedder, engineMetrics)
	retrieveUC := usecase.NewRetrieveContextUseCase(docs, chunks, embedder, buildIndex, cfg.RetrievalTopK, engineMetrics)
	promptUC := usecase.NewBuildSystemPromptUseCase(tenants, retrieveUC)

	return &App{
		Config:  cfg,
		Metrics: engineMetrics,

		Queue:    queue,
		Docs:     docs,
		Tenants:  tenants,
		Storage:  storage,
		Embedder: embedder,

		IngestUC:   ingestUC,
		RetrieveUC: retrieveUC,
		PromptUC:   promptUC,

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
