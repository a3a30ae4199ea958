package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/contentql/internal/auth"
	"github.com/rpattn/contentql/internal/config"
	"github.com/rpattn/contentql/internal/contentful"
	"github.com/rpattn/contentql/internal/db"
	"github.com/rpattn/contentql/internal/export"
	"github.com/rpattn/contentql/internal/graphql"
	"github.com/rpattn/contentql/internal/logging"
	"github.com/rpattn/contentql/internal/metrics"
	"github.com/rpattn/contentql/internal/middleware"
	"github.com/rpattn/contentql/internal/repository"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := contentful.New(cfg.Contentful, contentful.WithLogger(logger.Named("contentful")))
	if err != nil {
		logger.Fatal("failed to create delivery client", zap.Error(err))
	}

	resolverOpts := []graphql.Option{
		graphql.WithLogger(logger.Named("resolver")),
		graphql.WithConcurrency(cfg.Server.Concurrency),
	}

	mux := http.NewServeMux()

	if cfg.Database.Enabled {
		conn, err := db.NewConnection(ctx, cfg.Database.Config)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer conn.Close()

		if err := db.RunMigrations(cfg.Database.Config); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		logRepo := repository.NewResolutionLogRepository(conn.Pool)
		resolverOpts = append(resolverOpts, graphql.WithRecorder(logRepo))
		mux.Handle("/logs", graphql.NewLogsHandler(logRepo))
	}

	resolver := graphql.NewResolver(client, resolverOpts...)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	withLoader := middleware.DataLoaderMiddleware(client)
	mux.Handle("/query", withLoader(graphql.NewHTTPHandler(resolver)))
	mux.Handle("/export", withLoader(export.NewHTTPHandler(resolver)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", playground.Handler("contentql playground", "/query"))

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(logger.Named("http"))(metrics.Middleware(auth.Middleware(mux))),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("space", cfg.Contentful.SpaceID),
			zap.String("environment", cfg.Contentful.Environment))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited")
}
