package backend

import (
	"context"
	"fmt"
	"log/slog"

	"cuotas/internal/apiclient"
	"cuotas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case APIBackend:
		return f.createAPIBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Reader:  repo,
		Writer:  repo,
		Cleanup: repo.Close,
	}, nil
}

// createAPIBackend does not contact the upstream; a failing first request
// surfaces as an upstream error on that request.
func (f *DefaultFactory) createAPIBackend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := apiclient.New(apiclient.Options{
		BaseURL:    config.APIBaseURL,
		Timeout:    config.APITimeout,
		MaxRetries: config.APIMaxRetries,
		CacheTTL:   config.APICacheTTL,
		Logger:     f.logger.With("component", "api_client"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized API backend",
		"base_url", config.APIBaseURL,
		"max_retries", config.APIMaxRetries)

	return &BackendResult{
		Reader:   client,
		Writer:   client,
		ReadOnly: true,
	}, nil
}
