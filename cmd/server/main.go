// ABOUTME: Standalone entry point for the voicenotes HTTP API
// ABOUTME: Loads config from the environment and serves until SIGINT or SIGTERM
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/harper/voicenotes/internal/api"
	"github.com/harper/voicenotes/internal/app"
	"github.com/harper/voicenotes/internal/config"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - Ask, Smartify, and embeddings will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	server := api.NewServer(api.Deps{
		Ask:             a.Ask,
		Smartify:        a.Smartify,
		Indexer:         a.Indexer,
		Notes:           a.Notes,
		Metrics:         a.Metrics,
		AskTimeout:      cfg.AskTimeout,
		SmartifyTimeout: cfg.SmartifyTimeout,
	})

	log.Printf("voicenotes API listening on %s", cfg.ListenAddr)
	if err := server.Run(ctx, cfg.ListenAddr); err != nil {
		log.Printf("Server error: %v", err)
	}
}
