package main

import (
	"context"
	"errors"
	"os"
	"time"

	"cuotas/internal/cli"
	cuotaslog "cuotas/internal/log"
	"cuotas/internal/metrics"
	"cuotas/internal/services"
	"cuotas/internal/worker"
)

func main() {
	_ = cli.LoadEnvFile()
	logger := cli.SetupLogger(cuotaslog.ComponentWorker)
	logger.Info("Starting cuotas-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	ledger, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", cuotaslog.FieldError, err)
		os.Exit(1)
	}
	defer ledger.Close()

	sheets, err := cli.NewSheetsExporter(ctx, cfg, logger.WithComponent(cuotaslog.ComponentSheets))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", cuotaslog.FieldError, err)
		os.Exit(1)
	}
	if sheets == nil {
		logger.Error("Nothing to do - the worker needs GOOGLE_SPREADSHEET_ID and service account credentials")
		os.Exit(1)
	}

	m := metrics.New()
	reports := services.NewReportService(ledger.Reader, services.ReportOptions{
		TrendMonths: cfg.TrendMonths,
		Metrics:     m,
		Logger:      logger.WithComponent(cuotaslog.ComponentReport),
	})
	exportWorker := worker.NewExportWorker(reports, sheets, m, worker.Config{RefreshInterval: cfg.ExportInterval})

	amqpClient, _, err := cli.ConnectAMQP(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", cuotaslog.FieldError, err)
		os.Exit(1)
	}
	if amqpClient != nil {
		defer amqpClient.Close()
		go func() {
			err := amqpClient.ConsumeReportExports(ctx, exportWorker.HandleMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", cuotaslog.FieldError, err)
				cancel()
			}
		}()
	} else {
		logger.Info("Running periodic refresh only - no AMQP_URL provided")
	}

	if err := exportWorker.Start(ctx); err != nil {
		logger.Error("Failed to start export worker", cuotaslog.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := cli.ShutdownContext(30 * time.Second)
	defer shutdownCancel()
	if err := exportWorker.Stop(shutdownCtx); err != nil {
		logger.Warn("Export worker did not stop cleanly", cuotaslog.FieldError, err)
	}
	logger.Info("cuotas-worker stopped")
}
