package compilation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ArtifactHashCacheFileName is the name of the file used to store the artifact hash.
const ArtifactHashCacheFileName = ".harvester-artifact-hash"

// ArtifactHashCache stores the hash of extracted contract records along with metadata.
type ArtifactHashCache struct {
	// Hash is the SHA-256 hash of the extracted records.
	Hash string `json:"hash"`
	// Platform is the platform that produced the records.
	Platform string `json:"platform,omitempty"`
	// Timestamp is when the hash was computed.
	Timestamp time.Time `json:"timestamp"`
}

// ComputeArtifactHash computes a SHA-256 hash over the name, kind, bytecode, and import names of every record. The
// records are sorted by name before hashing, so the hash does not depend on their order.
func ComputeArtifactHash(records []types.ContractRecord) string {
	hasher := sha256.New()

	// Sort by contract name for deterministic hashing
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b types.ContractRecord) int {
		return strings.Compare(a.Name, b.Name)
	})

	// Hash each record, separating fields so that adjacent values cannot run together
	for _, record := range sorted {
		hasher.Write([]byte(record.Name))
		hasher.Write([]byte{0})
		hasher.Write([]byte(record.Kind))
		hasher.Write([]byte{0})
		hasher.Write([]byte(record.Bytecode))
		hasher.Write([]byte{0})
		hasher.Write([]byte(record.DeployedBytecode))
		for _, imported := range record.ImportNames() {
			hasher.Write([]byte{1})
			hasher.Write([]byte(imported))
		}
		hasher.Write([]byte{0xff})
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// LoadArtifactHashCache loads the artifact hash cache from the specified directory.
// Returns nil if the cache file does not exist or cannot be parsed.
func LoadArtifactHashCache(directory string) *ArtifactHashCache {
	data, err := os.ReadFile(filepath.Join(directory, ArtifactHashCacheFileName))
	if err != nil {
		return nil
	}

	var cache ArtifactHashCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil
	}

	return &cache
}

// SaveArtifactHashCache saves the artifact hash cache to the specified directory.
// Returns an error if the cache cannot be written.
func SaveArtifactHashCache(directory string, cache *ArtifactHashCache) error {
	// Ensure the directory exists
	if err := os.MkdirAll(directory, 0755); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache")
	}

	if err := os.WriteFile(filepath.Join(directory, ArtifactHashCacheFileName), data, 0644); err != nil {
		return errors.Wrap(err, "failed to write cache file")
	}

	return nil
}

// NotifyArtifactHashStatus compares the hash of the extracted records with the hash cached in the provided directory
// and logs whether the repository produced a new or the same set of records as the previous run. The cache is updated
// with the new hash. True is returned if the records changed.
func NotifyArtifactHashStatus(result types.RepositoryBuildResult, cacheDirectory string, logger *logging.Logger) bool {
	if result.IsEmpty() {
		return false
	}

	// Compute the current hash and compare it with the cached one
	currentHash := ComputeArtifactHash(result.Contracts)
	cachedHash := LoadArtifactHashCache(cacheDirectory)
	changed := cachedHash == nil || cachedHash.Hash != currentHash

	if changed {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			result.Repository, " produced a ", colors.GreenBold, "new", colors.Reset, " set of contract records",
		)
	} else {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			result.Repository, " produced the ", colors.YellowBold, "same", colors.Reset,
			" contract records as previously (last run: ", formatDuration(time.Since(cachedHash.Timestamp)), " ago)",
		)
	}

	// Update the cache with the current hash
	newCache := &ArtifactHashCache{
		Hash:      currentHash,
		Platform:  result.Platform,
		Timestamp: time.Now(),
	}
	if err := SaveArtifactHashCache(cacheDirectory, newCache); err != nil {
		logger.Warn("Failed to save artifact hash cache", err)
	}
	return changed
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
