package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexResetYes bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or reset the vector index",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document and vector counts",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

var indexResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every document and recreate the collection",
	Long: `Drops the vector collection, recreates it for the current embedding model
and deletes every document and chunk. Required after changing the embedding
model or its dimensions.`,
	Args: cobra.NoArgs,
	RunE: runIndexReset,
}

func init() {
	indexResetCmd.Flags().BoolVarP(&indexResetYes, "yes", "y", false, "skip the confirmation prompt")

	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexResetCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Vectors:   %d\n", stats.Vectors)
	if stats.Dimension > 0 {
		cmd.Printf("Dimension: %d\n", stats.Dimension)
	}
	if stats.Model != "" {
		cmd.Printf("Model:     %s\n", stats.Model)
	}
	return nil
}

func runIndexReset(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if !indexResetYes {
		cmd.Print("This deletes every document and vector. Continue? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := documentService.ResetIndex(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}

	cmd.Println("Index reset.")
	return nil
}
