/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the SAF-T export form server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, TOML file, environment, flags)
  2. Initialize logger and metrics
  3. Initialize export history store
  4. Create export client and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config    TOML configuration file (optional)
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: saft.db)
             Use ":memory:" for an in-memory database, "" for no SQLite
  -upstream  Base URL of the export service

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/saft.db" -upstream="https://api.example.com"

  # Run without persistence
  ./server -db=""

ENVIRONMENT:
  SAFT_PORT, SAFT_DB_PATH, SAFT_UPSTREAM_URL, SAFT_ALLOWED_ORIGINS,
  SAFT_LOG_LEVEL, SAFT_LOG_FORMAT. Flags win over environment.

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/saft-export/api"
	"github.com/warp/saft-export/config"
	"github.com/warp/saft-export/exportclient"
	"github.com/warp/saft-export/observability"
	"github.com/warp/saft-export/saft"
	"github.com/warp/saft-export/saft/store"
	"github.com/warp/saft-export/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "TOML configuration file")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path (empty keeps history in memory)")
	upstream := flag.String("upstream", "", "Base URL of the export service")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Only flags given on the command line override the file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "db":
			cfg.Storage.DBPath = *dbPath
		case "upstream":
			cfg.Upstream.BaseURL = *upstream
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Initialize store
	var exports saft.ExportStore
	if cfg.Storage.DBPath == "" {
		logger.Warn("no database configured, export history is kept in memory")
		exports = store.NewMemory()
	} else {
		db, err := sqlite.New(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		exports = db
	}

	// Initialize handler
	handler := api.NewHandler(api.Dependencies{
		Store:     exports,
		Exporter:  exportclient.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout()),
		Metrics:   observability.NewMetrics(),
		Logger:    logger,
		YearsBack: cfg.Form.YearsBack,
	})

	// Create router
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	// The write timeout must outlast one upstream export.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Upstream.Timeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			"addr", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
			"upstream", cfg.Upstream.BaseURL,
			"db", cfg.Storage.DBPath,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}
