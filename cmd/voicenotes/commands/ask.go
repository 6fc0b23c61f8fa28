// ABOUTME: CLI command to ask a question of your notes
// ABOUTME: Prints the cited answer and the notes it drew from
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/core"
)

var (
	askTimeFilter string
)

// NewAskCmd creates ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question answered from your notes",
		Long: `Ask a question answered only from your notes.

The answer cites notes as [1], [2], ... matching the sources
listed below it. If nothing relevant is found it says so.

Examples:
  voicenotes ask "what did I promise Sam?"
  voicenotes ask --time week "what blocked the API work?"
  voicenotes ask --format json "product ideas about search"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askTimeFilter, "time", "all", "Only search notes from: week, month, 3months, all")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	result, err := a.Ask.Ask(cmd.Context(), core.AskRequest{
		UserID:     resolveUser(a.Config),
		Query:      query,
		TimeFilter: askTimeFilter,
	})
	if err != nil {
		return fmt.Errorf("asking: %w", err)
	}

	if wantJSON() {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", result.Answer)
	if quiet || len(result.Citations) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nSources:\n")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range result.Citations {
		fmt.Fprintf(w, "[%s]\t%s\t%s\t%s\n", c.ID, truncate(c.NoteTitle, 30), truncateDate(c.CreatedAt), truncate(c.Snippet, 60))
	}
	return w.Flush()
}

// truncateDate keeps the YYYY-MM-DD prefix of an ISO timestamp
func truncateDate(iso string) string {
	if len(iso) < 10 {
		return iso
	}
	return iso[:10]
}
