// ABOUTME: CLI command to embed one note
// ABOUTME: Regenerates the note's search embedding immediately
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEmbedCmd creates embed command
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <note-id>",
		Short: "Generate the search embedding for one note",
		Long: `Generate and store the search embedding for one note.

Examples:
  voicenotes embed 7f7c...`,
		Args: cobra.ExactArgs(1),
		RunE: runEmbed,
	}

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	noteID := args[0]

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	dimensions, err := a.Indexer.GenerateForNote(cmd.Context(), resolveUser(a.Config), noteID)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}

	if wantJSON() {
		return printJSON(cmd, map[string]interface{}{"noteId": noteID, "embeddingDimensions": dimensions})
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Embedded note %s (%d dimensions)\n", noteID, dimensions)
	}
	return nil
}
