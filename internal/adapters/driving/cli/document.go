package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentFormat string

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Manage ingested documents",
	Long:    `List, view or delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document with its chunks and vectors",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().StringVar(&documentFormat, "format", formatText, "output format: auto, text or json")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

// documentOutput is the JSON shape of a listed document.
type documentOutput struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Kind      string `json:"kind"`
	SHA256    string `json:"sha256"`
	CreatedAt string `json:"created_at"`
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	asJSON, err := wantJSON(cmd, documentFormat)
	if err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if asJSON {
		out := make([]documentOutput, 0, len(docs))
		for i := range docs {
			out = append(out, documentOutput{
				ItemID:    docs[i].ItemID,
				Title:     docs[i].Title,
				Source:    docs[i].Source,
				Kind:      docs[i].Kind,
				SHA256:    docs[i].SHA256,
				CreatedAt: docs[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		return printJSON(cmd, out)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ItemID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		if docs[i].Source != "" {
			cmd.Printf("    Source: %s\n", docs[i].Source)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	details, err := documentService.GetDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", details.ItemID)
	cmd.Printf("  Title:    %s\n", details.Title)
	cmd.Printf("  Source:   %s\n", details.Source)
	cmd.Printf("  Kind:     %s\n", details.Kind)
	cmd.Printf("  SHA-256:  %s\n", details.SHA256)
	cmd.Printf("  Chunks:   %d\n", details.ChunkCount)
	cmd.Printf("  Words:    %d\n", details.WordCount)
	cmd.Printf("  Created:  %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}
