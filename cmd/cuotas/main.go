package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"cuotas/internal/cli"
	apphttp "cuotas/internal/http"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
	"cuotas/internal/services"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		cuotaslog.New(cuotaslog.DefaultConfig()).Warn("Ignoring unreadable .env file", cuotaslog.FieldError, err)
	}
	logger := cli.SetupLogger(cuotaslog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	ledger, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", cuotaslog.FieldError, err)
		os.Exit(1)
	}
	defer ledger.Close()

	amqpClient, publisher, err := cli.ConnectAMQP(cfg, logger)
	if err != nil {
		// exports are refreshed periodically by the worker anyway
		logger.Warn("Report sync disabled", cuotaslog.FieldError, err)
	}
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	m := metrics.New()
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reader: ledger.Reader,
		Ledger: services.NewLedgerService(ledger.Writer, publisher, m, logger.WithComponent(cuotaslog.ComponentLedger)),
		Reports: services.NewReportService(ledger.Reader, services.ReportOptions{
			TrendMonths: cfg.TrendMonths,
			Metrics:     m,
			Logger:      logger.WithComponent(cuotaslog.ComponentReport),
		}),
		Metrics: m,
		Logger:  logger.WithComponent(cuotaslog.ComponentHTTP),

		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("HTTP server failed", cuotaslog.FieldError, err)
		cancel()
	}

	shutdownCtx, shutdownCancel := cli.ShutdownContext(30 * time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", cuotaslog.FieldError, err)
	}
	logger.Info("Server stopped")
}
