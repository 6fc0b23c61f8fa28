// ABOUTME: CLI command to backfill missing embeddings
// ABOUTME: Embeds batches of unindexed notes, or reports index coverage with --status
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/core"
)

var (
	backfillStatus    bool
	backfillBatchSize int
	backfillAll       bool
)

// NewBackfillCmd creates backfill command
func NewBackfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed notes that have no embedding yet",
		Long: `Embed a batch of notes that have no embedding yet, newest first.

Each call embeds up to --batch-size notes (max 50). Use --all to
repeat until nothing is left, or --status to see coverage.

Examples:
  voicenotes backfill
  voicenotes backfill --batch-size 50 --all
  voicenotes backfill --status`,
		RunE: runBackfill,
	}

	cmd.Flags().BoolVar(&backfillStatus, "status", false, "Show index coverage instead of embedding")
	cmd.Flags().IntVar(&backfillBatchSize, "batch-size", core.DefaultBackfillBatch, "Notes to embed per batch (max 50)")
	cmd.Flags().BoolVar(&backfillAll, "all", false, "Repeat batches until every note is embedded")

	return cmd
}

func runBackfill(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(backfillBatchSize, "--batch-size"); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	userID := resolveUser(a.Config)
	out := cmd.OutOrStdout()

	if backfillStatus {
		status, err := a.Indexer.Status(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("getting status: %w", err)
		}
		if wantJSON() {
			return printJSON(cmd, status)
		}
		fmt.Fprintf(out, "Indexed %d of %d notes (%d%%), %d pending\n",
			status.Indexed, status.Total, status.PercentComplete, status.Pending)
		return nil
	}

	var results []*core.BackfillResult
	for {
		result, err := a.Indexer.Backfill(cmd.Context(), userID, backfillBatchSize)
		if err != nil {
			return fmt.Errorf("backfilling: %w", err)
		}
		results = append(results, result)

		if !wantJSON() && !quiet {
			fmt.Fprintf(out, "Embedded %d, failed %d, %d remaining of %d\n",
				result.Processed, result.Errors, result.Remaining, result.Total)
		}

		// Stop when done or when a batch made no progress
		if !backfillAll || result.Remaining == 0 || result.Processed == 0 {
			break
		}
	}

	if wantJSON() {
		if len(results) == 1 {
			return printJSON(cmd, results[0])
		}
		return printJSON(cmd, results)
	}
	return nil
}
