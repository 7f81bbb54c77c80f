package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vicimikul/lifi-fee-scraper/internal/application/services"
	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/config"
	"github.com/vicimikul/lifi-fee-scraper/internal/infrastructure/database"
	"github.com/vicimikul/lifi-fee-scraper/internal/infrastructure/ethereum"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	// Resolve enabled chains
	registry, err := chains.NewRegistry(cfg.Chains)
	if err != nil {
		logger.Fatal("Invalid chain configuration", zap.Error(err))
	}

	enabled := make([]int64, 0, len(registry.Chains()))
	for _, c := range registry.Chains() {
		enabled = append(enabled, c.ID)
	}
	logger.Info("Starting fee scraper",
		zap.Int64s("chains", enabled),
		zap.Int64("chunk_size", cfg.Scanner.ChunkSize),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to storage
	db, err := database.NewMongoDB(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCancel()
		if err := db.Close(disconnectCtx); err != nil {
			logger.Error("Storage disconnect failed", zap.Error(err))
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Create repositories and chain clients
	eventRepo := database.NewFeeEventRepo(db, logger)
	progressRepo := database.NewProgressRepo(db)
	clientPool := ethereum.NewClientPool(cfg.RPC, logger)
	defer clientPool.Close()

	// Create scanner
	scanner := services.NewScannerService(
		func(chain chains.Chain) services.ChainReader {
			return clientPool.ForChain(chain)
		},
		registry,
		eventRepo,
		progressRepo,
		cfg.Scanner,
		logger,
	)

	scanner.Start(ctx)

	// Start metrics server
	go startMetricsServer(cfg.Scanner.MetricsPort, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping scanner...")

	// Graceful shutdown: the in-flight window completes before Stop returns
	scanner.Stop()

	logger.Info("Scanner stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

func startMetricsServer(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
