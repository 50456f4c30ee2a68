package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/harvester/config"
	"github.com/crytic/harvester/listings"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitListingsFlag ensures --listings is recorded in the project config and an empty manifest is created which
// extraction can load.
func TestInitListingsFlag(t *testing.T) {
	directory := t.TempDir()
	manifest := filepath.Join(directory, "listings", "bounties.yaml")

	projectConfig, err := config.GetDefaultProjectConfig()
	require.NoError(t, err)

	require.NoError(t, initCmd.ParseFlags([]string{"--listings", manifest}))
	t.Cleanup(func() {
		initCmd.Flags().VisitAll(func(flag *pflag.Flag) { flag.Changed = false })
	})
	require.NoError(t, updateProjectConfigWithInitFlags(initCmd, projectConfig))
	assert.Equal(t, manifest, projectConfig.Extraction.ListingsFile)

	require.NoError(t, createListingsFile(projectConfig.Extraction.ListingsFile))
	loaded, err := listings.LoadListings(manifest)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// An existing manifest is left untouched
	require.NoError(t, listings.WriteListings(manifest, []listings.Listing{
		{Source: "sherlock", URL: "https://github.com/sherlock-audit/2024-01-vault"},
	}))
	require.NoError(t, createListingsFile(manifest))
	loaded, err = listings.LoadListings(manifest)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "sherlock", loaded[0].Source)

	// No path means no manifest
	require.NoError(t, createListingsFile(""))
	entries, err := os.ReadDir(directory)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
