package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"opsdesk/apps/backend/features/message"
	"opsdesk/apps/backend/features/operation"
	"opsdesk/apps/backend/features/stats"
	"opsdesk/apps/backend/features/ticket"
	"opsdesk/apps/backend/features/webhook"
	"opsdesk/apps/backend/internal/auth"
	"opsdesk/apps/backend/internal/config"
	"opsdesk/apps/backend/internal/middleware"
	"opsdesk/apps/backend/internal/worker"
)

// VectorStore is everything the app needs from the embedding index: the
// planner diffs against it, the worker writes to it, stats counts it.
type VectorStore interface {
	ListEmbeddedMessageIDs(ctx context.Context) ([]string, error)
	SaveEmbedding(ctx context.Context, emb worker.Embedding) error
	DeleteEmbeddingsByMessageID(ctx context.Context, messageID string) error
	CountEmbeddings(ctx context.Context) (int, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler       http.Handler
	EmbedConsumer *worker.EmbedConsumer
	Dispatcher    *webhook.Dispatcher

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	taskPub TaskPublisher,
	embedder worker.Embedder,
	logger *slog.Logger,
) (*App, error) {

	// Auth
	authRepo := auth.NewPostgresRepo(db)
	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	guard := auth.NewGuard(authRepo)
	authHandler := auth.NewHandler(authRepo, jwtSvc)
	identify := auth.Identify(jwtSvc)

	// Feature: Ticket
	ticketRepo := ticket.NewPostgresRepo(db)
	ticketService := ticket.NewService(ticketRepo, guard, logger)
	ticketHandler := ticket.NewHandler(ticketService)

	// Feature: Message
	messageRepo := message.NewPostgresRepo(db)
	messageHandler := message.NewHandler(messageRepo)

	// Feature: Webhook
	webhookRepo := webhook.NewPostgresRepo(db)
	webhookTimeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	dispatcher := webhook.NewDispatcher(webhookRepo, webhookTimeout, logger)
	logQuery := webhook.NewLogQueryService(webhookRepo, guard, logger)
	webhookHandler := webhook.NewHandler(webhookRepo, logQuery)

	// Feature: Operation
	operationRepo := operation.NewPostgresRepo(db)
	planner := operation.NewPlanner(operationRepo, messageRepo, vecStore, taskPub, logger)
	operationHandler := operation.NewHandler(planner, operationRepo)

	// Feature: Stats
	statsHandler := stats.NewHandler(ticketRepo, operationRepo, &deliveryCountAdapter{repo: webhookRepo}, vecStore)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	wrap := func(next http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(identify(enableCORS(next)))
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /auth/login", middleware.CorrelationID(enableCORS(authHandler.Login)))

	mux.Handle("POST /tickets", wrap(ticketHandler.Create))
	mux.Handle("GET /tickets", wrap(ticketHandler.List))
	mux.Handle("POST /tickets/bulk-delete", wrap(ticketHandler.BulkDelete))
	mux.Handle("POST /tickets/{id}/messages", wrap(messageHandler.Create))
	mux.Handle("GET /tickets/{id}/messages", wrap(messageHandler.ListByTicket))

	mux.Handle("POST /operations/plan", wrap(operationHandler.Plan))
	mux.Handle("GET /operations", wrap(operationHandler.List))

	mux.Handle("POST /webhooks", wrap(webhookHandler.Create))
	mux.Handle("GET /webhooks", wrap(webhookHandler.List))
	mux.Handle("GET /webhooks/logs", wrap(webhookHandler.QueryLogs))

	mux.Handle("GET /stats", wrap(statsHandler.GetStats))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Worker (Embed Consumer) Setup
	embedConsumer := worker.NewEmbedConsumer(
		embedder,
		vecStore,
		operationRepo,
		&messageFetcherAdapter{repo: messageRepo},
		dispatcher,
	)

	return &App{
		Handler:       mux,
		EmbedConsumer: embedConsumer,
		Dispatcher:    dispatcher,
		port:          cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Adapter for MessageFetcher in Worker
type messageFetcherAdapter struct {
	repo message.Repository
}

func (a *messageFetcherAdapter) GetMessage(ctx context.Context, id string) (string, string, error) {
	m, err := a.repo.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	return m.TicketID, m.Body, nil
}

// Adapter for the stats error-delivery count
type deliveryCountAdapter struct {
	repo webhook.Repository
}

func (a *deliveryCountAdapter) CountErrorDeliveries(ctx context.Context) (int, error) {
	return a.repo.CountDeliveryLogs(ctx, webhook.LogFilter{Status: webhook.ClassificationError})
}
