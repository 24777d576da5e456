package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/home"
	"github.com/pagelingo/pagelingo/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pagelingo server",
	Long: `Start the pagelingo HTTP server.

The server holds the current document's pages in memory; images, projects,
and exports live under the home directory. Configuration is hot-reloaded
when the config file changes.

Examples:
  pagelingo serve                     # Listen on the configured address
  pagelingo serve --addr :9000        # Listen on a custom address`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		srv, err := server.New(server.Config{
			Addr:          serveAddr,
			HomeDir:       h,
			ConfigManager: cm,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Blocks until shutdown
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: from config, :8585)")

	rootCmd.AddCommand(serveCmd)
}
