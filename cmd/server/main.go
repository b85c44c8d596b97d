package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/protrackhq/protrack/internal/ai"
	"github.com/protrackhq/protrack/internal/config"
	"github.com/protrackhq/protrack/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDataDir(cfg.Store.Path); err != nil {
		logger.Error("failed to prepare data path", "error", err)
		os.Exit(1)
	}

	store := server.NewFileStore(cfg.Store.Path, logger)

	var generator server.Generator
	gemini := ai.NewGemini(cfg.AI.APIKey, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	if gemini.Configured() {
		generator = gemini
	} else {
		logger.Warn("gemini api key not configured, AI endpoints degraded")
	}

	svc := server.NewServer(server.Config{
		Store:      store,
		Generator:  generator,
		CORSOrigin: cfg.Server.CORSOrigin,
		Logger:     logger,
	})
	defer svc.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: svc,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "data", cfg.Store.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDataDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
