package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recipehub/internal/adapters"
	"recipehub/internal/amqp"
	"recipehub/internal/cache"
	"recipehub/internal/services"
	gsheet "recipehub/internal/sheets/google"
	"recipehub/internal/sheets/memory"
	"recipehub/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend builds the configured backend, fronted by the snapshot cache
// when config.CacheTTL is positive.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	if config.CacheTTL > 0 {
		f.withCache(result, config.CacheTTL)
	}
	return result, nil
}

func (f *DefaultFactory) withCache(result *BackendResult, ttl time.Duration) {
	cached := cache.NewRecipeStore(result.Backend, ttl)
	manager := cache.NewManager()
	manager.Register(cached)
	manager.StartCleanup(ttl)

	inner := result.Cleanup
	result.Backend = cached
	result.Cleanup = func() error {
		manager.Stop()
		if inner != nil {
			return inner()
		}
		return nil
	}
	f.logger.Info("Recipe snapshot cache enabled", "ttl", ttl)
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; the worker sweep picks up pending rows without it.
	var publisher services.SyncPublisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			publisher = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	recipeService := services.NewRecipeService(sqliteRepo, publisher)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Backend: adapters.NewSQLiteAdapter(recipeService),
		Cleanup: recipeService.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context) (*BackendResult, error) {
	cli, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend")
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Backend: store}, nil
}

// Close runs the result's cleanup, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	if err := r.Cleanup(); err != nil {
		return fmt.Errorf("backend cleanup: %w", err)
	}
	return nil
}
