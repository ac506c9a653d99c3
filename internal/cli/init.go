// Package cli gathers the start-up steps shared by cmd/cuotas,
// cmd/cuotas-worker and cmd/cuotas-report.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cuotas/internal/amqp"
	"cuotas/internal/backend"
	"cuotas/internal/config"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/ports"
	"cuotas/internal/sheets/google"
)

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error; production sets the environment directly.
func LoadEnvFile(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(component string) *cuotaslog.Logger {
	logger := cuotaslog.New(cuotaslog.Config{
		Level:     cuotaslog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: component,
		Output:    os.Stdout,
		JSON:      os.Getenv("LOG_FORMAT") == "json",
	})
	cuotaslog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *cuotaslog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", cuotaslog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the ledger backend selected by DATA_BACKEND.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *cuotaslog.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(cuotaslog.ComponentBackend).Logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bc.Type, err)
	}
	logger.Info("Ledger backend ready", "backend", bc.Type.String(), "read_only", res.ReadOnly)
	return res, nil
}

// ConnectAMQP dials the broker when AMQP_URL is set. Without it both return
// values are nil, and the publisher stays a true nil interface so callers
// can test it.
func ConnectAMQP(cfg *config.Config, logger *cuotaslog.Logger) (*amqp.Client, ports.ReportPublisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, nil, fmt.Errorf("connect AMQP: %w", err)
	}
	logger.Info("AMQP client connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, client, nil
}

// NewSheetsExporter returns nil when no spreadsheet is configured.
func NewSheetsExporter(ctx context.Context, cfg *config.Config, logger *cuotaslog.Logger) (*google.Exporter, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets export disabled - no spreadsheet or credentials configured")
		return nil, nil
	}
	exp, err := google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets exporter: %w", err)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return exp, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *cuotaslog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// ShutdownContext bounds the time given to cleanup once a signal arrived.
func ShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
