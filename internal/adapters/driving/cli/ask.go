package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	askTopK   int
	askFormat string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the most relevant chunks and asks the LLM to answer from them.

The command prints the answer, its status (ok, no_hits, embedding_error or
error) and the chunks it cites. Piped output is JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().StringVar(&askFormat, "format", formatAuto, "output format: auto, text or json")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	asJSON, err := wantJSON(cmd, askFormat)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	res := answerService.Ask(cmd.Context(), question, askTopK)

	if asJSON {
		return printJSON(cmd, res)
	}

	cmd.Println(res.Answer)
	cmd.Println()
	cmd.Printf("Status: %s\n", res.Status)
	if len(res.Citations) > 0 {
		cmd.Println("Sources:")
		for i, c := range res.Citations {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, c.ChunkID, c.Score)
		}
	}

	if res.Status == domain.AnswerStatusEmbeddingError || res.Status == domain.AnswerStatusError {
		return errors.New("question failed: " + res.Status.String())
	}
	return nil
}
