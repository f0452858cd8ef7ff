package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

var (
	// Styles for show command
	convHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	outlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("179"))

	userTurnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	assistantTurnStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	turnContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	commentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Italic(true).
			Padding(0, 2)

	notesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Padding(0, 1).
			MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show a conversation with its annotations",
	Long: `Display an imported conversation's turns with outline overrides,
comments, indent levels, and notes applied.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if !internal.ValidIdentity(id) {
			return fmt.Errorf("malformed conversation identity: %q", id)
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		conv, ok := store.LoadAnnotated(id)
		if !ok {
			return fmt.Errorf("no cached markup for %s (try: threadmark open --open %s)", shortID(id), id)
		}

		fmt.Println(convHeaderStyle.Render(fmt.Sprintf("Conversation %s (%d turns)", shortID(id), len(conv.Turns))))

		if conv.Notes != nil && conv.Notes.Text != "" {
			fmt.Println(notesStyle.Render("Notes: " + conv.Notes.Text))
		}

		for i, turn := range conv.Turns {
			if summary, ok := conv.Outline[i]; ok {
				fmt.Println(outlineStyle.Render(fmt.Sprintf("[%d] %s", i, summary)))
			}

			label := userTurnStyle
			if turn.Role == "assistant" {
				label = assistantTurnStyle
			}
			fmt.Println(label.Render(fmt.Sprintf("%s:", turn.Role)))

			content := turn.Text
			if level := conv.Indents[i]; level > 0 {
				content = indentLines(content, level)
			}
			fmt.Println(turnContentStyle.Render(content))

			if comment, ok := conv.Comments[i]; ok {
				line := comment.Turn
				if comment.Heading != "" {
					line = comment.Heading + ": " + line
				}
				fmt.Println(commentStyle.Render("# " + line))
			}
		}

		return nil
	},
}

func indentLines(text string, level int) string {
	prefix := strings.Repeat("  ", level)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
}
