package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported conversations",
	Long:  `List every conversation identity in the local annotation store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		ids, err := store.ListIdentities()
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}

		if len(ids) == 0 {
			fmt.Println("No conversations imported yet. Try: threadmark import <file>")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Conversations (%d)", len(ids))))
		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "IDENTITY\tTURNS\tNOTE UPDATED")

		for _, id := range ids {
			turns := "-"
			if raw, ok := store.LoadRawSource(id); ok {
				turns = countStyle.Render(fmt.Sprintf("%d", len(internal.ExtractTurns(raw))))
			}

			noteUpdated := "-"
			if notes := store.LoadNotes(id); notes.LastUpdated != "" {
				noteUpdated = noteStyle.Render(notes.LastUpdated)
			}

			fmt.Fprintf(w, "%s\t%s\t%s\n", idStyle.Render(shortID(id)), turns, noteUpdated)
		}

		return w.Flush()
	},
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16] + "…"
	}
	return id
}

func init() {
	rootCmd.AddCommand(listCmd)
}
