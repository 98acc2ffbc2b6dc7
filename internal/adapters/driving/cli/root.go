// Package cli provides the sercha-rag command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Global flags.
var (
	configDir string
	dataDir   string
	verbose   bool
)

// Services used by commands. They are wired by the root command before a
// command runs, or injected directly by tests.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	answerService    driving.AnswerService
	retrievalService driving.RetrievalService
	documentService  driving.DocumentService
	appSettings      *domain.AppSettings
)

// scopeAnnotation selects how much of the application a command needs.
const scopeAnnotation = "sercha-rag/scope"

// Command scopes.
const (
	scopeNone     = "none"
	scopeSettings = "settings"
)

// current is the application opened for the running command.
var current *App

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Ask questions about your documents",
	Long: `sercha-rag ingests documents, indexes them as semantic chunks and answers
questions from the most relevant passages, citing the chunks it used.

Documents are identified by the hash of their bytes, so ingesting the same
file twice is a cheap no-op.`,
	SilenceUsage:       true,
	PersistentPreRunE:  wireServices,
	PersistentPostRunE: releaseServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sercha-rag)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.sercha-rag/data)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func wireServices(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}

	scope := cmd.Annotations[scopeAnnotation]
	if scope == scopeNone || servicesInjected(scope) {
		return nil
	}

	opts := Options{ConfigDir: configDir, DataDir: dataDir, SettingsOnly: scope == scopeSettings}
	app, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	current = app

	settingsService = app.SettingsService
	appSettings = app.Settings
	if app.Ingest != nil {
		ingestService = app.Ingest
		answerService = app.Answer
		retrievalService = app.Retrieval
		documentService = app.Documents
	}
	return nil
}

func releaseServices(_ *cobra.Command, _ []string) error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	settingsService = nil
	ingestService = nil
	answerService = nil
	retrievalService = nil
	documentService = nil
	appSettings = nil
	return err
}

// servicesInjected reports whether the services a scope needs are already set.
func servicesInjected(scope string) bool {
	if settingsService == nil {
		return false
	}
	if scope == scopeSettings {
		return true
	}
	return ingestService != nil && answerService != nil && documentService != nil
}

// settingsOrDefaults returns the wired settings or the defaults.
func settingsOrDefaults() *domain.AppSettings {
	if appSettings != nil {
		return appSettings
	}
	d := domain.DefaultAppSettings()
	return &d
}
