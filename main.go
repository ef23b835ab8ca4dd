package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/forkful/cliparse"
	"github.com/danielhkuo/forkful/db"
	"github.com/danielhkuo/forkful/middleware"
	"github.com/danielhkuo/forkful/realtime"
	"github.com/danielhkuo/forkful/router"
	"github.com/danielhkuo/forkful/session"
)

func main() {
	// Load .env if present; real env takes precedence
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Websocket hub carries every broadcast: votes, timers, lifecycle
	hub := realtime.NewHub()

	// Create router
	mux := router.NewRouter(dbConn, cfg, hub)

	// Background sweep for abandoned sessions
	cleanup := session.NewCleanup(dbConn, hub,
		cfg.CleanupIntervalMinutes, cfg.InactiveTimeoutMinutes, cfg.MaxDurationHours)
	if err := cleanup.Start(); err != nil {
		slog.Error("cleanup scheduling failed", "error", err)
		os.Exit(1)
	}
	defer cleanup.Stop()

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux, cfg.AllowedOrigin),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
