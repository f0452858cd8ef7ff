package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

var importSalt string

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import exported conversation markup",
	Long: `Import an exported conversation from a markup file (use "-" for stdin).

The markup is parsed into ordered turns, hashed into a stable
content-derived identity, and cached locally so annotations survive
across sessions. Re-importing identical content yields the same
identity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, err := readInput(args[0])
		if err != nil {
			return fmt.Errorf("failed to read markup: %w", err)
		}

		turns := internal.ExtractTurns(markup)
		if len(turns) == 0 {
			return fmt.Errorf("no messages found in markup")
		}

		id := internal.HashConversation(turns, importSalt)

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.SaveRawSource(id, markup); err != nil {
			return fmt.Errorf("failed to cache markup: %w", err)
		}
		// First-touch marks the identity as seen.
		store.LoadSettings(id)

		fmt.Printf("Imported %d turns\n", len(turns))
		fmt.Printf("Conversation identity: %s\n", id)
		return nil
	},
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	importCmd.Flags().StringVar(&importSalt, "salt", "", "Optional salt mixed into the identity hash")
	rootCmd.AddCommand(importCmd)
}
