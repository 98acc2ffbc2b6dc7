package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, retrieval, AI providers and other options.

Settings are stored in config.toml inside the config directory. Environment
variables such as OPENAI_API_KEY override stored values without being saved.`,
	Annotations: map[string]string{scopeAnnotation: scopeSettings},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Annotations: map[string]string{scopeAnnotation: scopeSettings},
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key.

Examples:
  sercha-rag settings set retrieval.top_k 8
  sercha-rag settings set retrieval.min_score 0.3
  sercha-rag settings set vector_index.backend qdrant
  sercha-rag settings set timeouts.generate 90s
  sercha-rag settings set watch.rescan "@every 10m"`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{scopeAnnotation: scopeSettings},
	RunE:        runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used for ingestion and questions.

Changing the embedding model requires 'sercha-rag index reset': a collection
is pinned to the model that filled it.`,
	Annotations: map[string]string{scopeAnnotation: scopeSettings},
	RunE:        runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:         "llm",
	Short:       "Configure LLM provider",
	Long:        `Configure the LLM provider that writes answers.`,
	Annotations: map[string]string{scopeAnnotation: scopeSettings},
	RunE:        runSettingsLLM,
}

var settingsValidateCmd = &cobra.Command{
	Use:         "validate",
	Short:       "Check settings and provider connectivity",
	Annotations: map[string]string{scopeAnnotation: scopeSettings},
	RunE:        runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Max length: %d characters\n", settings.Chunking.MaxLength)
	cmd.Printf("  Overlap: %d words\n", settings.Chunking.OverlapWords)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Min score: %.2f\n", settings.Retrieval.MinScore)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Batch size: %d, concurrency: %d\n", settings.Embedding.BatchSize, settings.Embedding.Concurrency)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend: %s\n", settings.VectorIndex.Backend)
	cmd.Printf("  Collection: %s\n", settings.VectorIndex.Collection)
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  Qdrant URL: %s\n", settings.VectorIndex.QdrantURL)
	}
	cmd.Println()

	cmd.Println("[Timeouts]")
	cmd.Printf("  Embed: %s, search: %s, generate: %s\n",
		settings.Timeouts.Embed, settings.Timeouts.Search, settings.Timeouts.Generate)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  HTTP address: %s\n", settings.HTTP.Addr)
	cmd.Printf("  Max upload: %d MB\n", settings.HTTP.MaxUploadMB)
	if settings.Extraction.TikaURL != "" {
		cmd.Printf("  Tika: %s\n", settings.Extraction.TikaURL)
	}
	if settings.Watch.Rescan != "" {
		cmd.Printf("  Watch rescan: %s\n", settings.Watch.Rescan)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Configuration issues: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	if strings.HasPrefix(key, "embedding.") {
		cmd.Println("Embedding changes need 'sercha-rag index reset' before the next ingest.")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	cmd.Print("Embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Print("LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	providers := domain.AllEmbeddingProviders()
	cmd.Println("Select embedding provider:")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := domain.DefaultEmbeddingModels()[selected]
	cmd.Printf("Model [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey := ""
	if selected.RequiresAPIKey() {
		cmd.Print("API key (leave empty to use environment): ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := settingsService.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to set embedding provider: %w", err)
	}

	cmd.Print("Validating connection... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	providers := domain.AllLLMProviders()
	cmd.Println("Select LLM provider:")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Model [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey := ""
	if selected.RequiresAPIKey() {
		cmd.Print("API key (leave empty to use environment): ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to set LLM provider: %w", err)
	}

	cmd.Print("Validating connection... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is the terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
