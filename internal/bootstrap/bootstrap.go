package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/meridiancde/nmtc-backend/internal/config"
	"github.com/meridiancde/nmtc-backend/internal/core/ports"
	"github.com/meridiancde/nmtc-backend/internal/core/usecase"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/detection"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/ocr/azure"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/ocr/pdftext"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/queue/nats"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/repository/postgres"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/resilience"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/storage/localfs"
	"github.com/meridiancde/nmtc-backend/internal/infrastructure/storage/minio"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.DocumentRepository
	Registry *detection.Registry

	IngestUC  *usecase.IngestDocumentUseCase
	ProcessUC ports.DocumentProcessor
	StatusUC  *usecase.DetectionStatusUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	audit := postgres.NewAuditRepository(db)
	if err := audit.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}

	storage, err := buildStorage(ctx, cfg)
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

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("init pattern registry: %w", err)
	}
	classifier := detection.NewClassifier(registry)

	recognizer, err := buildRecognizer(cfg)
	if err != nil {
		return nil, fmt.Errorf("init text recognizer: %w", err)
	}

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, recognizer, classifier, audit)
	statusUC := usecase.NewDetectionStatusUseCase(repo, queue)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Repo:     repo,
		Registry: registry,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		StatusUC:  statusUC,

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

func buildStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	if cfg.StorageBackend == "s3" {
		return minio.New(ctx, minio.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
	}
	return localfs.New(cfg.StoragePath)
}

func buildRegistry(cfg config.Config) (*detection.Registry, error) {
	if cfg.PatternOverridesPath == "" {
		return detection.NewRegistry()
	}
	f, err := os.Open(cfg.PatternOverridesPath)
	if err != nil {
		return nil, fmt.Errorf("open pattern overrides: %w", err)
	}
	defer f.Close()
	return detection.NewRegistryWithOverrides(f)
}

func buildRecognizer(cfg config.Config) (ports.TextRecognizer, error) {
	if cfg.OCRBackend != "azure" {
		return pdftext.New(), nil
	}
	if cfg.AzureEndpoint == "" || cfg.AzureAPIKey == "" {
		return nil, fmt.Errorf("azure ocr backend requires AZURE_DI_ENDPOINT and AZURE_DI_API_KEY")
	}

	// The analyze submit gets its own retry budget; polling is already a
	// long-running loop and is not retried.
	ocrExecutor := resilience.NewExecutor(resilience.Config{
		Retry: resilience.RetryPolicy{
			MaxAttempts:    4,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     5 * time.Second,
			Multiplier:     2.0,
			AttemptTimeout: 30 * time.Second,
		},
		Breaker: resilience.BreakerPolicy{Enabled: true},
	})

	return azure.New(cfg.AzureEndpoint, cfg.AzureAPIKey, azure.Options{
		Model:              cfg.AzureModel,
		RequestsPerSecond:  cfg.OCRRequestsPerSec,
		ResilienceExecutor: ocrExecutor,
		PollInterval:       time.Duration(cfg.OCRPollIntervalSecs) * time.Second,
		PollTimeout:        time.Duration(cfg.OCRPollTimeoutSecs) * time.Second,
	}), nil
}
