package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/backup"
	gbackup "gastos/internal/backup/google"
	membackup "gastos/internal/backup/memory"
	"gastos/internal/cli"
	applog "gastos/internal/log"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting gastos-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Spreadsheet backup is optional; without it records are appended to an
	// in-memory sink, which keeps local development flowing.
	var writer backup.Writer
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gbackup.New(context.Background(),
			cfg.GoogleSpreadsheetID, cfg.BackupLedgerSheet, cfg.BackupPurchasesSheet)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets backup", applog.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets backup initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"ledger_sheet", cfg.BackupLedgerSheet,
			"purchases_sheet", cfg.BackupPurchasesSheet)
	} else {
		writer = membackup.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID set, backups stay in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backupWorker := worker.NewBackupWorker(repo, writer, cfg.SyncBatchSize)

	// Drain whatever was left pending while the worker was down.
	if err := backupWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", applog.FieldError, err)
	}

	go func() {
		handler := func(msg *amqp.RecordSyncMessage) error {
			return backupWorker.HandleSyncMessage(ctx, msg)
		}
		if err := amqpClient.ConsumeRecordSync(ctx, handler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
			cancel()
		}
	}()

	// Periodic catch-up for records whose messages were lost.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := backupWorker.ProcessPendingRecords(ctx); err != nil {
					logger.Error("Periodic sync failed", applog.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
