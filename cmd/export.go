package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
	"github.com/threadmark/threadmark/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <conversation-id>",
	Short: "Export an annotated conversation to file",
	Long: `Export a conversation's turns and annotations in json, yaml, or
markdown. Writes to stdout unless --output names a directory.`,
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
			return fmt.Errorf("no cached markup for %s", shortID(id))
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			return exporter.Export(conv, os.Stdout)
		}

		if err := os.MkdirAll(exportOutput, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(exportOutput, fmt.Sprintf("conversation_%s.%s", shortPrefix(id), exporter.Extension()))
		f, err := os.Create(path)
		if err != nil {
			return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
		}
		defer f.Close()

		if err := exporter.Export(conv, f); err != nil {
			return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

// shortPrefix is a filename-safe identity prefix
func shortPrefix(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, yaml, md)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
