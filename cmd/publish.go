package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

// publishCmd pushes a conversation's annotation snapshot to the share server
var publishCmd = &cobra.Command{
	Use:   "publish <conversation-id>",
	Short: "Publish a conversation's annotations to the share server",
	Long: `Assemble the conversation's cached markup and every non-empty
annotation facet into one document and push it to the configured blob
store. The remote document is replaced wholesale from current local
truth; the local store is never touched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		controller := internal.NewSyncController(store, blobClient())
		result, err := controller.Publish(context.Background(), id)
		if err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}

		if result.IsNew {
			fmt.Printf("Created shared snapshot %s\n", shortID(id))
		} else {
			fmt.Printf("Updated shared snapshot %s\n", shortID(id))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
