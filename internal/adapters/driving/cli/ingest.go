package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	ingestFormat string
	ingestSource string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest files or directories",
	Long: `Ingest one or more files. Directories are walked recursively, skipping
hidden entries and files without a matching normaliser.

Files whose bytes were ingested before are reported as duplicates and are not
re-embedded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFormat, "format", formatAuto, "output format: auto, text or json")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "provenance recorded on every document (default: the file path)")
	rootCmd.AddCommand(ingestCmd)
}

// ingestOutput is the JSON shape of one file's result.
type ingestOutput struct {
	Path      string `json:"path"`
	ItemID    string `json:"item_id,omitempty"`
	SHA256    string `json:"sha256,omitempty"`
	Chunks    int    `json:"chunks"`
	Duplicate bool   `json:"duplicate"`
	Error     string `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	asJSON, err := wantJSON(cmd, ingestFormat)
	if err != nil {
		return err
	}

	paths, skipped, err := collectPaths(cmd, args)
	if err != nil {
		return err
	}

	outputs := make([]ingestOutput, 0, len(paths))
	reqs := make([]domain.IngestRequest, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			outputs = append(outputs, ingestOutput{Path: p, Error: err.Error()})
			continue
		}
		source := p
		if ingestSource != "" {
			source = ingestSource
		}
		reqs = append(reqs, domain.IngestRequest{Content: content, Filename: filepath.Base(p), Source: source})
		outputs = append(outputs, ingestOutput{Path: p})
	}

	results := ingestService.IngestBatch(cmd.Context(), reqs)

	failed := 0
	next := 0
	for i := range outputs {
		if outputs[i].Error != "" {
			failed++
			continue
		}
		res := results[next]
		next++
		outputs[i].ItemID = res.ItemID
		outputs[i].SHA256 = res.SHA256
		outputs[i].Chunks = res.Chunks
		outputs[i].Duplicate = res.Duplicate
		if res.Err != nil {
			outputs[i].Error = res.Err.Error()
			failed++
		}
	}

	if asJSON {
		if err := printJSON(cmd, outputs); err != nil {
			return err
		}
	} else {
		printIngestTable(cmd, outputs, skipped)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outputs))
	}
	return nil
}

// collectPaths expands directories into their supported files.
func collectPaths(cmd *cobra.Command, args []string) (paths []string, skipped int, err error) {
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, 0, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		found, err := filesystem.New(arg).Scan(cmd.Context())
		if err != nil {
			return nil, 0, err
		}
		for _, p := range found {
			if ingestService.Supports(filepath.Base(p)) {
				paths = append(paths, p)
			} else {
				skipped++
			}
		}
	}
	return paths, skipped, nil
}

func printIngestTable(cmd *cobra.Command, outputs []ingestOutput, skipped int) {
	created, duplicates := 0, 0
	for _, o := range outputs {
		switch {
		case o.Error != "":
			cmd.Printf("  FAIL  %s: %s\n", o.Path, o.Error)
		case o.Duplicate:
			duplicates++
			cmd.Printf("  SAME  %s -> %s\n", o.Path, o.ItemID)
		default:
			created++
			cmd.Printf("  OK    %s -> %s (%d chunks)\n", o.Path, o.ItemID, o.Chunks)
		}
	}
	cmd.Println()
	cmd.Printf("Ingested %d, duplicates %d, failed %d", created, duplicates, len(outputs)-created-duplicates)
	if skipped > 0 {
		cmd.Printf(", skipped %d unsupported", skipped)
	}
	cmd.Println()
}
