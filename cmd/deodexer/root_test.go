package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_FlagsRegistered verifies the flag surface the config
// loader binds against actually exists on the root command.
func TestRootCommand_FlagsRegistered(t *testing.T) {
	for _, name := range []string{
		"input", "output", "framework", "tool", "java", "api-level",
		"workers", "timeout", "extension", "exclude", "dry-run", "validate",
		"report-format", "report-dir", "history-path", "no-history", "no-progress",
	} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "flag --%s must be registered", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

// TestRootCommand_PathFlagsNotCobraRequired verifies cobra does not enforce
// the path flags before RunE. They may arrive via the config file or
// DEODEXER_* environment variables, so presence is checked after the merge.
func TestRootCommand_PathFlagsNotCobraRequired(t *testing.T) {
	assert.NoError(t, rootCmd.ValidateRequiredFlags())
	for _, name := range []string{"input", "output", "framework", "tool"} {
		f := rootCmd.Flags().Lookup(name)
		require.NotNil(t, f)
		assert.Empty(t, f.Annotations[cobra.BashCompOneRequiredFlag], "--%s must not be marked required", name)
	}
}

// TestSubcommandsRegistered verifies the command tree wiring.
func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["check"])
	assert.True(t, names["history"])
	assert.True(t, names["config"])
}

// TestRootCommand_RejectsPositionalArgs verifies inputs come from flags.
func TestRootCommand_RejectsPositionalArgs(t *testing.T) {
	require.NotNil(t, rootCmd.Args)
	err := rootCmd.Args(rootCmd, []string{"stray"})
	assert.Error(t, err)
}
