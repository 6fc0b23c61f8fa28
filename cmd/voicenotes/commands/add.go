// ABOUTME: CLI command to add new notes
// ABOUTME: Reads text from an argument, a file, or stdin and indexes it before exiting
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/voicenotes/internal/core"
)

var (
	addFile       string
	addTitle      string
	addTranscript bool
	addTemplate   string
	addAudioURL   string
)

// NewAddCmd creates add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add a new note",
		Long: `Add a new note from text, a file, or stdin.

The note is embedded for search before the command exits.
Use --transcript when the text is a raw voice transcript so
smartify runs against it.

Examples:
  voicenotes add "Call Sam about the term sheet on Friday"
  voicenotes add --title "Standup" --file standup.txt
  pbpaste | voicenotes add --transcript --audio-url https://cdn/x.m4a`,
		RunE: runAdd,
	}

	cmd.Flags().StringVar(&addFile, "file", "", "Read note from file")
	cmd.Flags().StringVar(&addTitle, "title", "", "Note title")
	cmd.Flags().BoolVar(&addTranscript, "transcript", false, "Store the text as the note's transcript")
	cmd.Flags().StringVar(&addTemplate, "template", "", "Template type (meeting, investor_update, progress_log, product_idea, brain_dump, journal, todo)")
	cmd.Flags().StringVar(&addAudioURL, "audio-url", "", "URL of the source recording")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args, addFile)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	// Closing drains the index queue, so the note is searchable on exit
	defer closeApp(a)

	in := core.NewNote{
		Title:        addTitle,
		AudioURL:     addAudioURL,
		TemplateType: addTemplate,
	}
	if addTranscript {
		in.Transcript = text
	} else {
		in.Content = text
	}

	note, err := a.Notes.Create(cmd.Context(), resolveUser(a.Config), in)
	if err != nil {
		return fmt.Errorf("adding note: %w", err)
	}

	if wantJSON() {
		return printJSON(cmd, note)
	}
	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), note.ID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added note %s (%s)\n", note.ID, note.DisplayTitle())
	return nil
}
