package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/meshhq/ghcrawler/dashboard"
	"github.com/meshhq/ghcrawler/fetcher"
	"github.com/meshhq/ghcrawler/processor"
	"github.com/meshhq/ghcrawler/queue"
	"github.com/meshhq/ghcrawler/store"
)

func main() {
	configPath := flag.String("config", "ghcrawler.yaml", "path to the YAML config file")
	flag.Parse()

	logger := setupLogger()
	logger.Info("ghcrawler starting", "config", *configPath)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.Processor.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Store
	documentStore, err := store.Build(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	logger.Info("store opened", "path", cfg.Store.SQLitePath)

	// 2. Queue backend
	backend, err := queue.Build(ctx, cfg.Queue)
	if err != nil {
		logger.Error("failed to build queue backend", "error", err)
		os.Exit(1)
	}
	logger.Info("queue backend ready", "backend", cfg.Queue.Backend)

	// 3. Fetcher + token pool
	tokenPool := fetcher.NewTokenPool(cfg.Tokens)
	httpFetcher := fetcher.NewClient(tokenPool, fetcher.WithUserAgent(cfg.UserAgent))
	logger.Info("fetcher ready", "tokens", tokenPool.Len())

	// 4. Document processor
	proc := processor.NewProcessor(backend, documentStore, cfg.Processor)

	// 5. Dashboard
	stats := dashboard.NewStats()
	var dash *dashboard.Server
	if cfg.DashboardAddr != "" {
		var depths dashboard.QueueDepther
		if mq, ok := backend.(*queue.MemoryQueue); ok {
			depths = mq
		}
		dash = dashboard.NewServer(logger, cfg.DashboardAddr, stats, depths)
		go func() {
			if err := dash.Start(ctx); err != nil {
				logger.Error("dashboard crashed", "error", err)
			}
		}()
		logger.Info("dashboard listening", "addr", cfg.DashboardAddr)
	}

	// 6. Worker pool
	worker := queue.NewWorker(backend, httpFetcher, documentStore, proc, logger)
	worker.Concurrency = cfg.Queue.WorkerConcurrency
	worker.Stats = stats

	go func() {
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("worker stopped", "error", err)
		}
	}()
	logger.Info("worker pool started", "concurrency", worker.Concurrency)

	// 7. Seed requests
	for _, seed := range cfg.Seeds {
		req := seedRequest(seed)
		if req == nil {
			logger.Warn("could not classify seed URL, skipping", "url", seed)
			continue
		}
		if err := backend.Push(ctx, processor.PriorityDefault, req); err != nil {
			logger.Error("failed to seed request", "url", seed, "error", err)
		}
	}
	logger.Info("seeds enqueued", "count", len(cfg.Seeds))

	// 8. Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("ghcrawler ready - waiting for signals")
	<-sigChan
	logger.Info("shutdown signal received")

	cancel()
	if dash != nil {
		_ = dash.Stop(context.Background())
	}
	if closer, ok := documentStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("error closing store", "error", err)
		}
	}
	logger.Info("ghcrawler stopped cleanly")
}

// seedRequest classifies a seed URL into a root-type Request by shape:
// /orgs/<name>, /users/<name>, or /repos/<owner>/<name>.
func seedRequest(seedURL string) *processor.Request {
	path := strings.TrimPrefix(seedURL, "https://api.github.com")
	switch {
	case strings.HasPrefix(path, "/orgs/"):
		return processor.NewRequest(processor.TypeOrg, seedURL, processor.Context{}, nil)
	case strings.HasPrefix(path, "/users/"):
		return processor.NewRequest(processor.TypeUser, seedURL, processor.Context{}, nil)
	case strings.HasPrefix(path, "/repos/"):
		return processor.NewRequest(processor.TypeRepo, seedURL, processor.Context{}, nil)
	default:
		return nil
	}
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
