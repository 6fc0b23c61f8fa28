// ABOUTME: Serve command starts the HTTP API
// ABOUTME: Identity comes from X-User-ID set by a fronting auth proxy
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/api"
)

var (
	serveAddr string
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server

Serves Ask, Smartify, and embedding endpoints under /api, plus
/health and Prometheus metrics at /metrics. Every /api request
must carry the caller's id in the X-User-ID header.`,
		RunE: runServe,
		Example: `  # Listen on the default address (:8080 or $VOICENOTES_ADDR)
  voicenotes serve

  # Ask a question
  curl -H 'X-User-ID: me' -d '{"query":"what did I promise Sam?"}' localhost:8080/api/ask`,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides VOICENOTES_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	addr := a.Config.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := api.NewServer(api.Deps{
		Ask:             a.Ask,
		Smartify:        a.Smartify,
		Indexer:         a.Indexer,
		Notes:           a.Notes,
		Metrics:         a.Metrics,
		AskTimeout:      a.Config.AskTimeout,
		SmartifyTimeout: a.Config.SmartifyTimeout,
	})

	log.Printf("voicenotes API listening on %s (vector backend: %s)", addr, a.Config.VectorBackend)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutdown complete")
	return nil
}
