package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// Options locate the configuration and data on disk.
type Options struct {
	ConfigDir string
	DataDir   string

	// SettingsOnly stops after the settings layer, so settings can be
	// repaired even when a provider is unreachable.
	SettingsOnly bool
}

// App holds the wired services for one command invocation.
type App struct {
	Settings        *domain.AppSettings
	SettingsService *services.SettingsService
	Ingest          *services.IngestService
	Retrieval       *services.Retriever
	Answer          *services.AnswerService
	Documents       *services.DocumentService

	closers []func() error
}

// openApp is replaced in tests.
var openApp = Open

// Open loads settings and wires the core services to their adapters.
//
//nolint:gocyclo // Sequential wiring of every adapter
func Open(ctx context.Context, opts Options) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			app.Close() //nolint:errcheck
		}
	}()

	// 1. Configuration: config.toml, then .env files, then the environment.
	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	configRoot := filepath.Dir(store.Path())
	if err := store.LoadEnv(".env", filepath.Join(configRoot, ".env")); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	app.SettingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	app.Settings, err = app.SettingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if app.Settings.Verbose {
		logger.SetVerbose(true)
	}
	if opts.SettingsOnly {
		return app, nil
	}
	if err := app.SettingsService.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	settings := app.Settings

	// 2. Document store. The memory backend keeps everything in process.
	var (
		docs   driven.DocumentStore
		opener ai.CollectionOpener
	)
	if settings.VectorIndex.Backend == domain.VectorBackendMemory {
		docs = memory.NewDocumentStore()
	} else {
		db, err := sqlite.NewStore(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		docs = db.DocumentStore()
		opener = db
	}

	// 3. Embedder, generator and vector index.
	initResult, err := ai.Init(ctx, settings, opener)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error {
		initResult.Close()
		return nil
	})
	for _, w := range initResult.Warnings {
		logger.Warn("%s", w)
	}

	// 4. Normalisers and the chunking pipeline.
	registry := normalisers.NewRegistry()
	if err := normalisers.RegisterDefaults(registry, settings.Extraction); err != nil {
		return nil, fmt.Errorf("registering normalisers: %w", err)
	}
	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	pipeline, err := postprocessors.BuildPipeline(processors, app.SettingsService.GetPipelineConfig())
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	// 5. Prompts live next to config.toml.
	prompts, err := file.NewPromptStore(filepath.Join(configRoot, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	// 6. Services.
	embedder := initResult.EmbeddingService
	index := initResult.VectorIndex
	app.Ingest = services.NewIngestService(docs, registry, pipeline, embedder, index, services.IngestConfigFrom(settings))
	app.Retrieval = services.NewRetriever(embedder, index, services.RetrievalConfigFrom(settings))
	app.Answer = services.NewAnswerService(app.Retrieval, initResult.LLMService, services.AnswerConfigFrom(settings))
	app.Answer.SetPromptStore(prompts)
	app.Documents = services.NewDocumentService(docs, index, embedder)

	logger.Debug("wired %s embedder, %s index", settings.Embedding.Provider, settings.VectorIndex.Backend)
	return app, nil
}

// Close releases adapters in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
