package compilation

import (
	"io/fs"
	"path/filepath"

	"github.com/crytic/harvester/compilation/platforms"
	"github.com/crytic/harvester/compilation/types"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
	"golang.org/x/exp/slices"
)

// toolchainSearchSkipDirectories are never descended into while looking for toolchain markers. They hold dependencies
// whose own markers would otherwise shadow the repository's.
var toolchainSearchSkipDirectories = []string{"node_modules", ".git", "lib"}

// SelectionStatus describes the outcome of processing a repository.
type SelectionStatus string

const (
	// SelectionStatusBuilt indicates a platform produced at least one contract record.
	SelectionStatusBuilt SelectionStatus = "built"
	// SelectionStatusBuildFailed indicates a toolchain was detected but no platform or mode produced any records.
	SelectionStatusBuildFailed SelectionStatus = "build_failed"
	// SelectionStatusUnsupported indicates no toolchain marker was found.
	SelectionStatusUnsupported SelectionStatus = "unsupported"
)

// SelectionResult is the outcome of Selector.Process for a single repository.
type SelectionResult struct {
	// Status is the terminal outcome for the repository
	Status SelectionStatus
	// Platform is the identifier of the platform which produced the records, if any
	Platform string
	// Mode is the name of the build mode which produced the records, if any
	Mode string
	// Directory is the directory the toolchain markers were found in, if any
	Directory string
	// Result holds the ordered records. It is empty unless Status is SelectionStatusBuilt.
	Result types.RepositoryBuildResult
}

// FindToolchainDirectory walks the repository depth-first in lexical order and returns the first directory holding a
// marker file of any of the provided platforms, along with every platform whose markers are present there, in the
// order provided.
func FindToolchainDirectory(root string, platformConfigs []platforms.PlatformConfig) (string, []platforms.PlatformConfig, bool) {
	var (
		directory string
		matched   []platforms.PlatformConfig
	)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		// Unreadable entries are skipped, the walk continues with their siblings
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(toolchainSearchSkipDirectories, d.Name()) {
			return filepath.SkipDir
		}

		matched = matchingPlatforms(path, platformConfigs)
		if len(matched) > 0 {
			directory = path
			return filepath.SkipAll
		}
		return nil
	})
	return directory, matched, directory != ""
}

// matchingPlatforms returns the platforms with at least one marker file in the directory.
func matchingPlatforms(directory string, platformConfigs []platforms.PlatformConfig) []platforms.PlatformConfig {
	return utils.SliceWhere(platformConfigs, func(platformConfig platforms.PlatformConfig) bool {
		return slices.ContainsFunc(platformConfig.MarkerFiles(), func(marker string) bool {
			return utils.FileExists(filepath.Join(directory, marker))
		})
	})
}

// Selector chooses the toolchain of a repository, builds it, and extracts its contract records, falling back across
// build modes and platforms until one produces records. Process may be called concurrently for distinct repositories
// once event subscriptions are in place.
type Selector struct {
	// Platforms are the candidate platforms, most preferred first
	Platforms []platforms.PlatformConfig
	// Runner executes build commands
	Runner BuildRunner
	// Router receives repositories which produced nothing
	Router RepositoryRouter
	// Logger reports selection decisions. If nil, the global logger is used.
	Logger *logging.Logger
	// TrackArtifactChanges enables the artifact hash cache in each built toolchain directory
	TrackArtifactChanges bool
	// Events describes the event system for the Selector. Subscribers must be safe for concurrent use if Process is
	// called concurrently.
	Events SelectorEvents
}

// NewSelector creates a Selector for the platforms of the provided config.
func NewSelector(config *CompilationConfig, runner BuildRunner, router RepositoryRouter) (*Selector, error) {
	platformConfigs, err := config.GetPlatforms()
	if err != nil {
		return nil, err
	}
	return &Selector{
		Platforms: platformConfigs,
		Runner:    runner,
		Router:    router,
	}, nil
}

func (s *Selector) logger(repositoryPath string) *logging.Logger {
	logger := s.Logger
	if logger == nil {
		logger = logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE)
	}
	return logger.NewSubLogger("repository", repositoryPath)
}

// Process selects, builds, and extracts the repository at the given path. Repositories which produce nothing are
// handed to the Router. Router errors are logged, not returned.
func (s *Selector) Process(repositoryPath string) SelectionResult {
	result := s.process(repositoryPath)
	s.Events.RepositoryProcessed.Publish(RepositoryProcessedEvent{
		Repository: repositoryPath,
		Result:     result,
	})
	return result
}

func (s *Selector) process(repositoryPath string) SelectionResult {
	logger := s.logger(repositoryPath)

	directory, matched, found := FindToolchainDirectory(repositoryPath, s.Platforms)
	if !found {
		if s.Router != nil {
			if err := s.Router.Unsupported(repositoryPath); err != nil {
				logger.Error("Failed to route unsupported repository", err)
			}
		}
		return SelectionResult{
			Status: SelectionStatusUnsupported,
			Result: emptyBuildResult(repositoryPath),
		}
	}
	logger.Debug("Found toolchain markers in ", directory, " for ", len(matched), " platform(s)")

	for _, platformConfig := range matched {
		for _, mode := range platformConfig.BuildModes() {
			logger.Info("Building with ", colors.Bold, platformConfig.Platform(), colors.Reset, " (", mode.Name, ")")
			commandFailed := !s.runBuildMode(logger, directory, mode)

			// Build output may exist even if a command failed, so extraction is always attempted
			result := platforms.ExtractContracts(platformConfig, directory)
			s.Events.BuildModeAttempted.Publish(BuildModeAttemptedEvent{
				Repository:    repositoryPath,
				Platform:      platformConfig.Platform(),
				Mode:          mode.Name,
				CommandFailed: commandFailed,
				Records:       len(result.Contracts),
			})
			if result.IsEmpty() {
				logger.Warn(platformConfig.Platform(), " (", mode.Name, ") produced no contract records")
				continue
			}
			result.Repository = repositoryPath

			if s.TrackArtifactChanges {
				NotifyArtifactHashStatus(result, directory, logger)
			}
			return SelectionResult{
				Status:    SelectionStatusBuilt,
				Platform:  platformConfig.Platform(),
				Mode:      mode.Name,
				Directory: directory,
				Result:    result,
			}
		}
	}

	if s.Router != nil {
		if err := s.Router.Quarantine(repositoryPath); err != nil {
			logger.Error("Failed to quarantine repository", err)
		}
	}
	return SelectionResult{
		Status:    SelectionStatusBuildFailed,
		Directory: directory,
		Result:    emptyBuildResult(repositoryPath),
	}
}

// runBuildMode runs every command of the mode in order, stopping at the first failure. It returns false if a command
// failed.
func (s *Selector) runBuildMode(logger *logging.Logger, directory string, mode platforms.BuildMode) bool {
	runner := s.Runner
	if runner == nil {
		runner = NoopBuildRunner{}
	}
	for _, command := range mode.Commands {
		if err := runner.Run(directory, command); err != nil {
			logger.Warn("Command ", colors.Bold, command.String(), colors.Reset, " failed", err)
			return false
		}
	}
	return true
}

func emptyBuildResult(repositoryPath string) types.RepositoryBuildResult {
	return types.RepositoryBuildResult{
		Repository: repositoryPath,
		Contracts:  make([]types.ContractRecord, 0),
	}
}
