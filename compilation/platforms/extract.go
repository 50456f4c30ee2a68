package platforms

import (
	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
)

// newExtractionLogger returns a sub-logger of the global logger tagged with the extraction service and platform.
func newExtractionLogger(platform string) *logging.Logger {
	return logging.GlobalLogger.NewSubLogger("module", logging.EXTRACTION_SERVICE).NewSubLogger("platform", platform)
}

// ExtractContracts reads the build output of the platform in the given repository and returns the ordered contract
// records with their imports resolved. A missing output directory yields an empty result.
func ExtractContracts(platform PlatformConfig, repositoryPath string) types.RepositoryBuildResult {
	logger := newExtractionLogger(platform.Platform())

	outputRoot := platform.OutputDirectory(repositoryPath)
	if !utils.DirectoryExists(outputRoot) {
		logger.Info("No build output found at ", colors.Bold, outputRoot, colors.Reset)
		return types.RepositoryBuildResult{
			Repository: repositoryPath,
			Platform:   platform.Platform(),
			Contracts:  make([]types.ContractRecord, 0),
		}
	}

	// Populate the registry, then resolve imports against a snapshot of it
	reader := NewArtifactReader(DefaultArtifactCacheSize, logger)
	registry := platform.Populate(reader, outputRoot)
	platform.ResolveImports(reader, outputRoot, registry)

	result := types.NewRepositoryBuildResult(repositoryPath, platform.Platform(), registry)
	interfaces, contracts := types.CountByKind(result.Contracts)
	logger.Debug("Extracted ", len(result.Contracts), " records (", interfaces, " interfaces, ", contracts, " contracts) from ", outputRoot,
		", ", reader.CachedFiles(), " artifacts cached between passes")
	return result
}
