/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PayPlay server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored locally)
  2. Parse command-line flags (flags override environment)
  3. Configure structured logging
  4. Initialize SQLite store
  5. Wire the room service, API handler, and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    HTTP listen address (default from PAYPLAY_ADDR, ":8080")
  -db      SQLite database path (default from PAYPLAY_DB, "payplay.db")
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/listerineh/payplay-app/api"
	"github.com/listerineh/payplay-app/config"
	"github.com/listerineh/payplay-app/logging"
	"github.com/listerineh/payplay-app/room"
	"github.com/listerineh/payplay-app/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags override the environment.
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Addr = *addr
	cfg.DBPath = *dbPath

	logger := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	service := room.NewService(store, logger)
	handler := api.NewHandler(service, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// A write timeout would cut off long-lived event streams; rely
		// on client disconnects and the shutdown deadline instead.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
