package config

import (
	"github.com/crytic/harvester/compilation"
	"github.com/rs/zerolog"
)

// GetDefaultProjectConfig obtains a default configuration for a project, attempting every supported platform in
// default order.
func GetDefaultProjectConfig() (*ProjectConfig, error) {
	compilationConfig, err := compilation.NewCompilationConfig()
	if err != nil {
		return nil, err
	}

	// Create a project configuration
	projectConfig := &ProjectConfig{
		Extraction: ExtractionConfig{
			Concurrency:           4,
			RepositoriesDirectory: "repos",
			ResultsDirectory:      "results",
			QuarantineDirectory:   "quarantine",
			SkipBuild:             false,
			TruncateBytecode:      false,
			PrintSummary:          true,
			WriteResults:          true,
			Strict:                false,
		},
		Compilation: compilationConfig,
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
	}

	// Return the project configuration
	return projectConfig, nil
}
