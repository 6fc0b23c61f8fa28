// ABOUTME: Root command and global flags for the voicenotes CLI
// ABOUTME: Validates flag combinations and silences library logs unless verbose
package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	userFlag     string
)

const banner = `
 █ █ █▀█ █ █▀▀ █▀▀ █▄ █ █▀█ ▀█▀ █▀▀ █▀
 ▀▄▀ █▄█ █ █▄▄ ██▄ █ ▀█ █▄█  █  ██▄ ▄█
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voicenotes",
		Short: "Ask your voice notes questions and extract what matters",
		Long: banner + `
Ask questions answered only from your notes, with citations.
Smartify a note to pull out action items, investor updates,
progress logs, product ideas, and brain dump items.
Keep the search index current with embed and backfill.

Run "voicenotes serve" for the HTTP API or "voicenotes mcp" for LLM agents.`,
		SilenceUsage:      true,
		PersistentPreRunE: preRun,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed logs")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, json, table)")
	cmd.PersistentFlags().StringVar(&userFlag, "user", "", "User id to act as (default: $VOICENOTES_USER_ID or \"local\")")

	cmd.AddCommand(
		NewServeCmd(),
		NewMCPCmd(),
		NewAddCmd(),
		NewAskCmd(),
		NewSmartifyCmd(),
		NewEmbedCmd(),
		NewBackfillCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func preRun(cmd *cobra.Command, args []string) error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	switch outputFormat {
	case "auto", "json", "table":
	default:
		return fmt.Errorf("--format must be auto, json, or table, got %q", outputFormat)
	}

	// Servers always log; one-shot commands only when asked
	switch cmd.Name() {
	case "serve", "mcp":
		log.SetOutput(os.Stderr)
	default:
		if verbose {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
	}
	return nil
}
