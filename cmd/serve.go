package cmd

import (
	"github.com/spf13/cobra"
	"github.com/threadmark/threadmark/internal"
)

var (
	servePort    int
	serveDataDir string
)

// serveCmd runs the file-backed blob store server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shared snapshot server",
	Long: `Run the file-backed blob store that holds published annotation
snapshots: PUT /share?id=<identity> stores a document, GET
/shared/<identity>.json returns it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := internal.LoadConfig()
		port := servePort
		if port == 0 {
			port = cfg.Port
		}
		dataDir := serveDataDir
		if dataDir == "" {
			dataDir = cfg.DataDir
		}
		base := shareURL
		if base == "" {
			base = cfg.ShareURL
		}

		server := internal.NewBlobServer(dataDir, base, port)
		return server.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default $THREADMARK_PORT)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Document directory (default $THREADMARK_DATA_DIR)")
	rootCmd.AddCommand(serveCmd)
}
