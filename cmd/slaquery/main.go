package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/config"
	dbRedis "github.com/contractops/slaquery/internal/db/redis"
	logpkg "github.com/contractops/slaquery/internal/logger"
	"github.com/contractops/slaquery/internal/metrics"
	"github.com/contractops/slaquery/internal/repository/contracts"
	"github.com/contractops/slaquery/internal/repository/ratelimit"
	"github.com/contractops/slaquery/internal/repository/respcache"
	chiTransport "github.com/contractops/slaquery/internal/transport/chi"
	ollamaEmb "github.com/contractops/slaquery/internal/transport/ollama"
	openaiGen "github.com/contractops/slaquery/internal/transport/openai"
	answeruc "github.com/contractops/slaquery/internal/usecase/answer"
	healthuc "github.com/contractops/slaquery/internal/usecase/health"
	ingestuc "github.com/contractops/slaquery/internal/usecase/ingest"
	queryuc "github.com/contractops/slaquery/internal/usecase/query"
	"github.com/contractops/slaquery/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting slaquery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("search_addrs", cfg.Search.Addresses),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Search.Addresses,
		Username:  cfg.Search.Username,
		Password:  cfg.Search.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create search client", zap.Error(err))
	}

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	embedder, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}

	generator := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	// Repositories over the shared clients
	contractsRepo := contracts.New(es, cfg.Search.Index, logger)
	limiter := ratelimit.New(store, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowSec)*time.Second)
	cache := respcache.New(store)

	// Use case services
	synthesizer := answeruc.New(generator, logger)
	querySvc := queryuc.New(
		limiter, cache, embedder, contractsRepo, synthesizer,
		time.Duration(cfg.Cache.TTLSec)*time.Second, logger,
	)
	ingestSvc := ingestuc.New(embedder, contractsRepo, logger)
	healthSvc := healthuc.New(store, contractsRepo)

	server := chiTransport.NewServer(querySvc, ingestSvc, healthSvc, contractsRepo, cfg.Search.Index, logger)
	router := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
