// ABOUTME: CLI command to smartify a note
// ABOUTME: Runs all five extractors, or previews their counts with --preview
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/models"
)

var (
	smartifyPreview bool
)

// NewSmartifyCmd creates smartify command
func NewSmartifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smartify <note-id>",
		Short: "Extract structured records from a note",
		Long: `Extract action items, investor updates, progress logs,
product ideas, and brain dump items from a note's transcript.

A note can be smartified again only after it has been edited.
Use --preview to estimate the counts without writing anything.

Examples:
  voicenotes smartify 7f7c...
  voicenotes smartify --preview 7f7c...`,
		Args: cobra.ExactArgs(1),
		RunE: runSmartify,
	}

	cmd.Flags().BoolVar(&smartifyPreview, "preview", false, "Estimate counts without extracting")

	return cmd
}

func runSmartify(cmd *cobra.Command, args []string) error {
	noteID := args[0]

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	userID := resolveUser(a.Config)

	if smartifyPreview {
		preview, err := a.Smartify.Preview(cmd.Context(), userID, noteID)
		if err != nil {
			return fmt.Errorf("previewing: %w", err)
		}
		if wantJSON() {
			return printJSON(cmd, map[string]interface{}{"noteId": noteID, "preview": preview})
		}
		return printCounts(cmd, "ESTIMATED", preview)
	}

	result, err := a.Smartify.Smartify(cmd.Context(), userID, noteID)
	if err != nil {
		return fmt.Errorf("smartifying: %w", err)
	}

	if wantJSON() {
		return printJSON(cmd, map[string]interface{}{
			"noteId":      noteID,
			"recordingId": result.RecordingID,
			"extracted":   result.Extracted,
			"failedJobs":  result.Failed(),
		})
	}

	if err := printCounts(cmd, "STORED", result.Extracted); err != nil {
		return err
	}
	if failed := result.Failed(); len(failed) > 0 && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d extraction job(s) failed: %v\n", len(failed), failed)
	}
	return nil
}

func printCounts(cmd *cobra.Command, heading string, counts models.ExtractionCounts) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RECORD TYPE\t%s\n", heading)
	fmt.Fprintf(w, "-----------\t%s\n", strings.Repeat("-", len(heading)))
	for _, kind := range models.AllRecordKinds {
		fmt.Fprintf(w, "%s\t%d\n", kind, counts.Get(kind))
	}
	return w.Flush()
}
