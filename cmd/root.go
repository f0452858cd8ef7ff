package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

var (
	verbose  bool
	dbPath   string
	shareURL string
	version  string = "dev"
	commit   string = "unknown"
	date     string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "threadmark",
	Short: "Import, annotate, and share exported conversations",
	Long: `A CLI tool to import exported conversation markup, annotate it,
and share the annotations across devices.

Each imported conversation gets a stable content-derived identity, and
annotations (custom outline text, comments, indent levels, notes) are
persisted per conversation. A conversation's annotation snapshot can be
published to a shared blob store and re-hydrated on another device.

Quick Start:
  threadmark import chat.html            # Import markup, print the identity
  threadmark list                        # List imported conversations
  threadmark show <id>                   # View a conversation with annotations
  threadmark publish <id>                # Push the snapshot to the share server
  threadmark open --shared <id>          # Hydrate a shared snapshot locally`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Annotation database path (default $THREADMARK_DB)")
	rootCmd.PersistentFlags().StringVar(&shareURL, "share-url", "", "Blob store base URL (default $THREADMARK_SHARE_URL)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// openStore opens the annotation store, creating the database directory
// on first use. The returned cleanup closes the database.
func openStore() (*internal.AnnotationStore, func(), error) {
	cfg := internal.LoadConfig()
	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := internal.OpenDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open annotation database: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			internal.LogWarn("Failed to close database: %v", err)
		}
	}
	return internal.NewAnnotationStore(db), cleanup, nil
}

// blobClient builds the HTTP client for the configured share server
func blobClient() *internal.HTTPBlobClient {
	cfg := internal.LoadConfig()
	base := shareURL
	if base == "" {
		base = cfg.ShareURL
	}
	return internal.NewHTTPBlobClient(base)
}
