package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchMinScore float64
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Show the chunks a question retrieves",
	Long: `Embeds the question and lists matching chunks with their similarity
scores, without generating an answer. Useful for tuning retrieval.min_score.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", -1, "minimum score (default from settings)")
	searchCmd.Flags().StringVar(&searchFormat, "format", formatAuto, "output format: auto, text or json")
	rootCmd.AddCommand(searchCmd)
}

// hitOutput is the JSON shape of a search hit.
type hitOutput struct {
	ChunkID string  `json:"chunk_id"`
	ItemID  string  `json:"item_id"`
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Title   string  `json:"title,omitempty"`
	Source  string  `json:"source,omitempty"`
	Text    string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	asJSON, err := wantJSON(cmd, searchFormat)
	if err != nil {
		return err
	}

	settings := settingsOrDefaults()
	limit := searchLimit
	if limit <= 0 {
		limit = settings.Retrieval.TopK
	}
	minScore := searchMinScore
	if minScore < 0 {
		minScore = settings.Retrieval.MinScore
	}

	hits, err := retrievalService.Retrieve(cmd.Context(), strings.Join(args, " "), limit, minScore)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if asJSON {
		out := make([]hitOutput, 0, len(hits))
		for _, h := range hits {
			out = append(out, hitOutput{
				ChunkID: h.ChunkID,
				ItemID:  h.Payload.ItemID,
				Index:   h.Payload.Index,
				Score:   h.Score,
				Title:   h.Payload.Title,
				Source:  h.Payload.Source,
				Text:    h.Payload.Text,
			})
		}
		return printJSON(cmd, out)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, h := range hits {
		title := h.Payload.Title
		if title == "" {
			title = h.Payload.ItemID
		}
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, title, h.Payload.Index, h.Score)
		cmd.Printf("      Chunk: %s\n", h.ChunkID)
		if h.Payload.Source != "" {
			cmd.Printf("      Source: %s\n", h.Payload.Source)
		}
		cmd.Printf("      %s\n", truncate(strings.Join(strings.Fields(h.Payload.Text), " "), 160))
		cmd.Println()
	}
	return nil
}
