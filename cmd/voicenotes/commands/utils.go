// ABOUTME: Shared helpers for CLI commands
// ABOUTME: App setup, user resolution, text input, and output formatting
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/app"
	"github.com/harper/voicenotes/internal/config"
)

// defaultUser is used when neither --user nor VOICENOTES_USER_ID is set
const defaultUser = "local"

// openApp loads .env and configuration, then wires every service
func openApp(ctx context.Context) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return a, nil
}

// closeApp waits for background indexing, then closes storage
func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Printf("Warning: Error closing: %v", err)
	}
}

// resolveUser picks the acting user id
func resolveUser(cfg *config.Config) string {
	if u := strings.TrimSpace(userFlag); u != "" {
		return u
	}
	if cfg.DefaultUserID != "" {
		return cfg.DefaultUserID
	}
	return defaultUser
}

// readText returns the argument, the file contents, or stdin
func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	var text string
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text provided")
	}
	return text, nil
}

// wantJSON reports whether output should be JSON
func wantJSON() bool {
	return outputFormat == "json"
}

// printJSON writes v as indented JSON
func printJSON(cmd *cobra.Command, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	return nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
