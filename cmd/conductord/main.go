// conductord exposes a single conversational session over HTTP: plain
// request/response chat, websocket token streaming, and history management.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailored-agentic-units/conductor/conductor"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to conductor config JSON file (optional)")
		addr       = flag.String("addr", "", "Listen address (overrides PORT)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	c, err := conductor.New(cfg)
	if err != nil {
		slog.Error("Failed to create conductor", "error", err)
		os.Exit(1)
	}
	c.Initialize()
	slog.Info("Conductor ready", "session_id", c.SessionID(), "model", cfg.Provider.Model)

	listen := *addr
	if listen == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		listen = ":" + port
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           newServer(c).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// loadConfig builds the conductor configuration from an optional JSON file
// with environment variables layered on top.
func loadConfig(path string) (*conductor.Config, error) {
	var cfg *conductor.Config
	if path != "" {
		loaded, err := conductor.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		defaults := conductor.DefaultConfig()
		cfg = &defaults
	}

	if cfg.Provider.Backend == "" {
		cfg.Provider.Backend = "openai"
	}
	if v := os.Getenv("CONDUCTOR_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("CONDUCTOR_SYSTEM_PROMPT"); v != "" {
		cfg.SystemPrompt = v
	}
	return cfg, nil
}
