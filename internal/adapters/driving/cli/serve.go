package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var (
	serveAddr  string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API with the MCP endpoint mounted at /mcp.

Routes:
  GET    /health
  POST   /ingest            multipart, field "files"
  POST   /ask               {"question": "...", "top_k": 6}
  GET    /documents
  GET    /documents/{id}
  DELETE /documents/{id}
  GET    /stats
  POST   /admin/reset

Use --watch to keep a directory ingested while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :8080)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "directory to watch and ingest")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || answerService == nil {
		return errors.New("services not configured")
	}
	settings := settingsOrDefaults()

	mcpServer, err := mcp.NewServer(&mcp.Ports{
		Answer:    answerService,
		Retrieval: retrievalService,
		Ingest:    ingestService,
		Document:  documentService,
	})
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Ingest:   ingestService,
		Answer:   answerService,
		Document: documentService,
		MCP:      mcpServer.Handler(),
	}, settings.HTTP.MaxUploadMB)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.HTTP.Addr
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if serveWatch != "" {
		source := filesystem.New(serveWatch)
		if err := source.Validate(ctx); err != nil {
			return err
		}
		watcher := services.NewWatchService(ingestService, documentService, source, services.WatchConfigFrom(settings))
		g.Go(func() error {
			defer source.Close() //nolint:errcheck
			if err := watcher.Run(ctx); err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
			return nil
		})
		logger.Info("watching %s", serveWatch)
	}

	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	cmd.Printf("Listening on %s\n", addr)
	return g.Wait()
}
