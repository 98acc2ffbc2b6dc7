package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"ask", "search", "ingest", "documents", "index",
		"serve", "watch", "mcp", "tui", "settings", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config-dir", "data-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		args  []string
		flags []string
	}{
		{args: []string{"serve"}, flags: []string{"addr", "watch"}},
		{args: []string{"watch"}, flags: []string{"rescan"}},
		{args: []string{"mcp", "serve"}, flags: []string{"port"}},
		{args: []string{"ask"}, flags: []string{"top-k", "format"}},
		{args: []string{"search"}, flags: []string{"limit", "min-score", "format"}},
		{args: []string{"ingest"}, flags: []string{"format", "source"}},
		{args: []string{"index", "reset"}, flags: []string{"yes"}},
	}

	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		require.NoError(t, err)
		for _, name := range tt.flags {
			assert.NotNil(t, cmd.Flags().Lookup(name), "%v --%s", tt.args, name)
		}
	}
}

func TestServicesInjected(t *testing.T) {
	assert.False(t, servicesInjected(""))
	assert.False(t, servicesInjected(scopeSettings))

	_, cleanup := setupTestServices()
	defer cleanup()
	assert.True(t, servicesInjected(""))
	assert.True(t, servicesInjected(scopeSettings))

	documentService = nil
	assert.False(t, servicesInjected(""))
	assert.True(t, servicesInjected(scopeSettings))
}

func TestReleaseServices_NoApp(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, releaseServices(rootCmd, nil))
	// Injected services are left alone when nothing was opened.
	assert.Equal(t, ts.answer, answerService)
}

func TestSettingsOrDefaults(t *testing.T) {
	assert.Equal(t, 6, settingsOrDefaults().Retrieval.TopK)

	_, cleanup := setupTestServices()
	defer cleanup()
	appSettings.Retrieval.TopK = 11
	assert.Equal(t, 11, settingsOrDefaults().Retrieval.TopK)
}

func TestWatchCmd_RequiresDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand(t, "", "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}
