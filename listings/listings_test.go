package listings

import (
	"path/filepath"
	"testing"

	"github.com/crytic/harvester/utils/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseGitHubURL ensures repository, name, and commit are extracted from the link shapes bounty sources publish.
func TestParseGitHubURL(t *testing.T) {
	testCases := []struct {
		link    string
		repoURL string
		name    string
		commit  string
		ok      bool
	}{
		{"https://github.com/sherlock-audit/2023-vault/tree/a1b2c3", "https://github.com/sherlock-audit/2023-vault", "2023-vault", "a1b2c3", true},
		{"https://github.com/org/repo/commit/deadbeef", "https://github.com/org/repo", "repo", "deadbeef", true},
		{"https://github.com/org/repo/blob/cafe/src/Vault.sol", "https://github.com/org/repo", "repo", "cafe", true},
		{"https://www.github.com/org/repo.git", "https://github.com/org/repo", "repo", "", true},
		{"https://github.com/org/repo/", "https://github.com/org/repo", "repo", "", true},
		{"https://github.com/org/repo/issues/4", "https://github.com/org/repo", "repo", "", true},
		{"https://github.com/code-423n4/", "", "", "", false},
		{"https://gitlab.com/org/repo", "", "", "", false},
		{"not a url\x7f", "", "", "", false},
	}
	for _, tc := range testCases {
		repoURL, name, commit, ok := ParseGitHubURL(tc.link)
		assert.Equal(t, tc.ok, ok, tc.link)
		assert.Equal(t, tc.repoURL, repoURL, tc.link)
		assert.Equal(t, tc.name, name, tc.link)
		assert.Equal(t, tc.commit, commit, tc.link)
	}
}

// TestRepositoryNameAndLocalPath ensures local paths fall back to the repository name under the repos directory.
func TestRepositoryNameAndLocalPath(t *testing.T) {
	assert.Equal(t, "repo", RepositoryName("https://github.com/org/repo"))
	assert.Equal(t, "repo", RepositoryName("https://github.com/org/repo.git/"))
	assert.Equal(t, "repo", RepositoryName("repo"))
	assert.Equal(t, "repo", RepositoryName("https://gitlab.com/org/repo.git"))

	// Links pinned to a commit or a file still name the repository
	assert.Equal(t, "2024-01-vault", RepositoryName("https://github.com/code-423n4/2024-01-vault/tree/4f2a9c1"))
	assert.Equal(t, "2024-01-vault", RepositoryName("https://github.com/code-423n4/2024-01-vault/blob/4f2a9c1/src/Vault.sol"))
	assert.Equal(t, "2024-01-vault", RepositoryName("https://github.com/code-423n4/2024-01-vault/commit/4f2a9c1"))
	assert.Equal(t, filepath.Join("repos", "2024-01-vault"),
		Listing{URL: "https://github.com/code-423n4/2024-01-vault/blob/4f2a9c1/src/Vault.sol"}.LocalPath("repos"))

	assert.Equal(t, filepath.Join("repos", "repo"), Listing{URL: "https://github.com/org/repo"}.LocalPath("repos"))
	assert.Equal(t, "repos/custom", Listing{URL: "https://github.com/org/repo", Name: "repos/custom"}.LocalPath("repos"))
}

// TestLoadListings ensures manifests are parsed, defaulted, and round trip through WriteListings.
func TestLoadListings(t *testing.T) {
	directory := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"listings.yaml": `listings:
  - source: sherlock
    url: https://github.com/sherlock-audit/2023-vault/tree/a1b2c3
    prizePool: 55000.50
  - url: https://github.com/org/repo
    name: repos/repo-main
  - source: immunefi
    name: repos/local-only
    prizePool: "1000"
`,
	})

	listings, err := LoadListings(filepath.Join(directory, "listings.yaml"))
	require.NoError(t, err)
	require.Len(t, listings, 3)

	assert.Equal(t, "sherlock", listings[0].Source)
	assert.Equal(t, "a1b2c3", listings[0].Commit)
	assert.True(t, decimal.RequireFromString("55000.5").Equal(listings[0].PrizePool))

	assert.Equal(t, DefaultSource, listings[1].Source)
	assert.Equal(t, "", listings[1].Commit)
	assert.True(t, listings[1].PrizePool.IsZero())

	assert.Equal(t, "repos/local-only", listings[2].LocalPath("repos"))
	assert.True(t, decimal.NewFromInt(1000).Equal(listings[2].PrizePool))

	// Write the listings back out and read them again
	path := filepath.Join(directory, "copy.yaml")
	require.NoError(t, WriteListings(path, listings))
	reloaded, err := LoadListings(path)
	require.NoError(t, err)
	require.Len(t, reloaded, 3)
	for i := range listings {
		assert.Equal(t, listings[i].URL, reloaded[i].URL)
		assert.Equal(t, listings[i].Source, reloaded[i].Source)
		assert.True(t, listings[i].PrizePool.Equal(reloaded[i].PrizePool))
	}
}

// TestLoadListingsErrors ensures invalid manifests are rejected.
func TestLoadListingsErrors(t *testing.T) {
	directory := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"empty-entry.yaml": "listings:\n  - source: hats\n",
		"negative.yaml":    "listings:\n  - url: https://github.com/org/repo\n    prizePool: -5\n",
		"malformed.yaml":   "listings: [\n",
		"unnamed.yaml":     "listings:\n  - url: https://example.com/org/..\n",
	})
	for _, name := range []string{"empty-entry.yaml", "negative.yaml", "malformed.yaml", "unnamed.yaml", "missing.yaml"} {
		_, err := LoadListings(filepath.Join(directory, name))
		assert.Error(t, err, name)
	}
}
