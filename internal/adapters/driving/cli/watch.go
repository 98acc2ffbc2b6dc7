package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

var watchRescan string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Ingest a directory and keep it in sync",
	Long: `Ingests every supported file under the directory, then watches it.
Created and modified files are re-ingested after a short debounce; deleted
files have their documents removed. Hidden files and directories are skipped.

Use --rescan with a cron spec (e.g. "@every 10m") to also pick up changes
the watcher missed.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchRescan, "rescan", "", "cron spec for periodic rescans (default from settings)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	source := filesystem.New(args[0])
	if err := source.Validate(cmd.Context()); err != nil {
		return err
	}
	defer source.Close() //nolint:errcheck

	cfg := services.WatchConfigFrom(settingsOrDefaults())
	if watchRescan != "" {
		cfg.Rescan = watchRescan
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", source.Root())
	return services.NewWatchService(ingestService, documentService, source, cfg).Run(cmd.Context())
}
