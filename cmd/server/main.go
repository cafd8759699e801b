package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clipcoach/backend/internal/analyzer"
	"github.com/clipcoach/backend/internal/chat"
	"github.com/clipcoach/backend/internal/knowledge"
	"github.com/clipcoach/backend/internal/server"
	"github.com/clipcoach/backend/internal/storage"
	"github.com/clipcoach/backend/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize lead storage
	var leads storage.LeadStorage
	if cfg.Leads.UseInMemory {
		logger.Info("Using in-memory lead storage")
		leads = storage.NewMemoryStorage()
	} else {
		logger.Info("Using file-backed lead storage", zap.String("file", cfg.Leads.File))
		leads, err = storage.NewFileStorage(cfg.Leads.File)
		if err != nil {
			logger.Fatal("Failed to initialize lead storage", zap.Error(err))
		}
	}
	defer leads.Close()

	// Build the system instruction once; it is immutable for the process
	instruction := knowledge.Load(cfg.Knowledge.Path, logger)

	coach := chat.NewCoach(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.ChatModel,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		instruction,
		logger,
	)

	videoAnalyzer := analyzer.NewAnalyzer(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.VisionModel,
		cfg.Analyzer,
		logger,
	)

	srv := server.New(coach, videoAnalyzer, leads, logger)

	// No write timeout: chat responses are long-lived event streams.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
