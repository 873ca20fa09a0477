package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/royal-dsouza/salesTransaction-http-etl/internal/api/handlers"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/api/middleware"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/config"
	infraBQ "github.com/royal-dsouza/salesTransaction-http-etl/internal/infra/bigquery"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/logger"
	"github.com/royal-dsouza/salesTransaction-http-etl/internal/pipeline"
)

func main() {
	// Parse command-line flags
	port := flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", true)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	// The BigQuery client is created once here and shared across all
	// requests; it is read-only after construction.
	ctx := context.Background()
	table := infraBQ.TableRef{
		ProjectID: cfg.ProjectID,
		DatasetID: cfg.DatasetID,
		TableName: cfg.TableName,
	}
	loader, err := infraBQ.NewLoader(ctx, table, cfg.ServiceAccountFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery loader")
	}
	defer loader.Close()

	processor := pipeline.NewProcessor(pipeline.NewTransformer(), loader, log)
	transactionsHandler := handlers.NewTransactionsHandler(processor, log)

	// Create router
	mux := http.NewServeMux()
	mux.HandleFunc("/", transactionsHandler.ProcessTransaction)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Health(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("table", table.String()).
			Msg("Starting sales transaction ETL server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
