package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/techcolloid1243/finance-planner/internal/amqp"
	"github.com/techcolloid1243/finance-planner/internal/auth"
	"github.com/techcolloid1243/finance-planner/internal/cli"
	"github.com/techcolloid1243/finance-planner/internal/config"
	"github.com/techcolloid1243/finance-planner/internal/docstore"
	"github.com/techcolloid1243/finance-planner/internal/docstore/gdrive"
	"github.com/techcolloid1243/finance-planner/internal/docstore/memory"
	apphttp "github.com/techcolloid1243/finance-planner/internal/http"
	"github.com/techcolloid1243/finance-planner/internal/persist"
	"github.com/techcolloid1243/finance-planner/internal/state"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

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
		logger.Info("Initialized Google Drive docstore", "backend", cfg.RemoteBackend)
	default:
		remote = memory.New()
		logger.Info("Initialized memory docstore", "backend", cfg.RemoteBackend)
	}

	// Optional queued sync path; without AMQP the adapter mirrors
	// remotely in-process.
	var publisher persist.RemotePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, mirroring in-process", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP sync publisher",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	session := auth.NewSession(auth.Identity{
		UserID:      cfg.UserID,
		Email:       cfg.UserEmail,
		DisplayName: cfg.UserName,
	})

	store := state.New()
	adapter := persist.New(store, local, remote, session, publisher)
	defer adapter.Close()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hydration runs synchronously inside Run, so the server below never
	// serves an unhydrated state.
	adapter.Run(runCtx)

	if cfg.AutoSignIn {
		if err := session.SignIn(); err != nil {
			logger.Warn("Auto sign-in failed", "error", err)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, store, adapter, session, cfg.DefaultProjectionMonths)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	})

	g, _ := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("Starting finance-planner server",
			"port", cfg.Port,
			"backend", cfg.RemoteBackend,
			"auto_sign_in", cfg.AutoSignIn)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
