package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/techcolloid1243/finance-planner/internal/amqp"
	"github.com/techcolloid1243/finance-planner/internal/cli"
	"github.com/techcolloid1243/finance-planner/internal/config"
	"github.com/techcolloid1243/finance-planner/internal/docstore"
	"github.com/techcolloid1243/finance-planner/internal/docstore/gdrive"
	"github.com/techcolloid1243/finance-planner/internal/docstore/memory"
	"github.com/techcolloid1243/finance-planner/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting planner-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("planner-worker requires AMQP_URL; without a queue the server mirrors in-process")
		os.Exit(1)
	}
	if cfg.UserID == "" {
		logger.Error("planner-worker requires PLANNER_USER_ID for catch-up syncs")
		os.Exit(1)
	}

	local := cli.InitLocalStore(logger, cfg.SQLiteDBPath)
	defer local.Close()

	var remote docstore.Client
	switch cfg.RemoteBackend {
	case config.BackendGDrive:
		client, err := gdrive.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Drive docstore", "error", err)
			os.Exit(1)
		}
		remote = client
	default:
		logger.Warn("Memory docstore configured; syncs will not leave this process", "backend", cfg.RemoteBackend)
		remote = memory.New()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(local, remote)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	// Startup catch-up: mirror anything written while the worker was
	// down.
	if err := syncWorker.CatchUp(ctx, cfg.UserID); err != nil {
		logger.Error("Startup catch-up failed", "error", err)
	}

	go func() {
		err := amqpClient.ConsumeStateSync(ctx, func(msg *amqp.StateSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := syncWorker.CatchUp(ctx, cfg.UserID); err != nil {
				logger.Error("Periodic catch-up failed", "error", err)
			}
		case <-ctx.Done():
			<-done
			logger.Info("planner-worker stopped gracefully")
			return
		}
	}
}
