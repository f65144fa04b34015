package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"opsdesk/apps/backend/internal/adapter/gemini"
	"opsdesk/apps/backend/internal/app"
	"opsdesk/apps/backend/internal/config"
	"opsdesk/apps/backend/internal/logger"
	"opsdesk/apps/backend/internal/worker"
)

func main() {
	// Initialize structured logger
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	log := slog.New(handler)
	slog.SetDefault(log)

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Infrastructure
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	// 3. Embedder (only needed by the embed worker)
	var embedder worker.Embedder
	if cfg.EnableEmbedWorker {
		if cfg.GeminiAPIKey == "" {
			slog.Error("GEMINI_API_KEY is required when the embed worker is enabled")
			os.Exit(1)
		}
		embedder, err = gemini.NewEmbedder(ctx, cfg.GeminiAPIKey)
		if err != nil {
			slog.Error("failed to create embedder", "error", err)
			os.Exit(1)
		}
	}

	// 4. Application wiring
	application, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer, embedder, log)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	// 5. Embed Worker (NSQ Consumer)
	if cfg.EnableEmbedWorker {
		nsqCfg := nsq.NewConfig()
		consumer, err := nsq.NewConsumer(config.TopicEmbedTask, "backend", nsqCfg)
		if err != nil {
			slog.Error("failed to create NSQ consumer", "error", err)
			os.Exit(1)
		}
		consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
			return application.EmbedConsumer.HandleMessage(m)
		}))
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("embed consumer connected", "topic", config.TopicEmbedTask)
		}
		defer consumer.Stop()
	}

	// 6. HTTP API
	if !cfg.EnableAPI {
		slog.Info("api disabled, running worker only")
		<-ctx.Done()
		return
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
