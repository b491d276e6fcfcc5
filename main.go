package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/fieldbook/cliparse"
	"github.com/danielhkuo/fieldbook/db"
	"github.com/danielhkuo/fieldbook/logger"
	"github.com/danielhkuo/fieldbook/middleware"
	"github.com/danielhkuo/fieldbook/router"
)

func main() {
	var err error

	// Console logging until the configuration says otherwise
	if err := logger.Initialize(false); err != nil {
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		logger.Logger.Errorw("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.LogJSON {
		if err := logger.Initialize(true); err != nil {
			logger.Logger.Errorw("logger setup failed", "error", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		logger.Logger.Errorw("unsupported database type", "error", err)
		os.Exit(1)
	}

	// Connect and verify
	ctx := context.Background()
	dbConn, err := db.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		logger.Logger.Errorw("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		logger.Logger.Errorw("schema creation failed", "error", err)
		os.Exit(1)
	}
	logger.Logger.Infow("Database schema ready", "dialect", dialect)

	if cfg.OpenAIKey == "" {
		logger.Logger.Warnw("OPENAI_API_KEY not set; natural-language queries are disabled")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigin)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	logger.Logger.Infow("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Logger.Errorw("Server closed", "error", err)
	} else {
		logger.Logger.Infow("Server closed", "error", err)
	}
}
