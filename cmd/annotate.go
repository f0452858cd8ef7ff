package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

var (
	commentHeading string
	commentText    string
)

// outlineCmd sets or clears the custom outline text for one turn
var outlineCmd = &cobra.Command{
	Use:   "outline <conversation-id> <turn-index> [text]",
	Short: "Set or clear a turn's custom outline text",
	Long: `Set the custom outline summary for one turn. Omitting the text (or
passing an empty string) clears the entry entirely.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, index, err := parseTarget(args)
		if err != nil {
			return err
		}

		text := ""
		if len(args) == 3 {
			text = args[2]
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.SetOutlineEntry(id, index, text); err != nil {
			return fmt.Errorf("failed to save outline entry: %w", err)
		}
		if text == "" {
			fmt.Printf("Cleared outline for turn %d\n", index)
		} else {
			fmt.Printf("Set outline for turn %d\n", index)
		}
		return nil
	},
}

// commentCmd sets or clears the structured comment for one turn
var commentCmd = &cobra.Command{
	Use:   "comment <conversation-id> <turn-index>",
	Short: "Set or clear a turn's comment",
	Long: `Attach a structured comment (heading plus text) to one turn. Leaving
both --heading and --text empty clears the entry entirely.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, index, err := parseTarget(args)
		if err != nil {
			return err
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		comment := internal.Comment{Heading: commentHeading, Turn: commentText}
		if err := store.SetCommentEntry(id, index, comment); err != nil {
			return fmt.Errorf("failed to save comment: %w", err)
		}
		if comment.IsEmpty() {
			fmt.Printf("Cleared comment for turn %d\n", index)
		} else {
			fmt.Printf("Set comment for turn %d\n", index)
		}
		return nil
	},
}

// indentCmd sets a turn's indent level; zero clears
var indentCmd = &cobra.Command{
	Use:   "indent <conversation-id> <turn-index> <level>",
	Short: "Set a turn's indent level",
	Long:  `Set the indent level for one turn. Level 0 clears the entry entirely.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, index, err := parseTarget(args)
		if err != nil {
			return err
		}

		level, err := strconv.Atoi(args[2])
		if err != nil || level < 0 {
			return fmt.Errorf("indent level must be a non-negative integer: %q", args[2])
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.SetIndentEntry(id, index, level); err != nil {
			return fmt.Errorf("failed to save indent: %w", err)
		}
		fmt.Printf("Set indent %d for turn %d\n", level, index)
		return nil
	},
}

// noteCmd sets the conversation's free-form note
var noteCmd = &cobra.Command{
	Use:   "note <conversation-id> [text]",
	Short: "Set or clear the conversation note",
	Args:  cobra.RangeArgs(1, 2),
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

		notes := internal.Notes{}
		if len(args) == 2 && args[1] != "" {
			notes = internal.Notes{
				Text:        args[1],
				LastUpdated: time.Now().UTC().Format(time.RFC3339),
			}
		}
		if err := store.SetNotes(id, notes); err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}
		if notes.IsEmpty() {
			fmt.Println("Cleared note")
		} else {
			fmt.Println("Saved note")
		}
		return nil
	},
}

// resetCmd deletes outline, comments, and indents for a conversation
var resetCmd = &cobra.Command{
	Use:   "reset <conversation-id>",
	Short: "Reset a conversation's outline, comments, and indents",
	Long: `Delete all outline overrides, comments, and indent levels for a
conversation. Settings, notes, and the cached markup are preserved.`,
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

		if err := store.ResetAll(id); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Println("Annotations reset")
		return nil
	},
}

// parseTarget validates the common <conversation-id> <turn-index> args
func parseTarget(args []string) (string, int, error) {
	id := args[0]
	if !internal.ValidIdentity(id) {
		return "", 0, fmt.Errorf("malformed conversation identity: %q", id)
	}
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("turn index must be a non-negative integer: %q", args[1])
	}
	return id, index, nil
}

func init() {
	commentCmd.Flags().StringVar(&commentHeading, "heading", "", "Comment heading")
	commentCmd.Flags().StringVar(&commentText, "text", "", "Comment text")

	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(indentCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(resetCmd)
}
