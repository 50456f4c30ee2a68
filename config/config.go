package config

import (
	"encoding/json"
	"os"

	"github.com/crytic/harvester/compilation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "harvester.json"

// ProjectConfig describes the configuration of a harvester run.
type ProjectConfig struct {
	// Extraction describes the configuration used when processing repositories
	Extraction ExtractionConfig `json:"extraction"`

	// Compilation describes the toolchains attempted on each repository
	Compilation *compilation.CompilationConfig `json:"compilation"`

	// Logging describes the configuration used for logging to file and console
	Logging LoggingConfig `json:"logging"`
}

// ExtractionConfig describes how repositories are located, processed, and reported.
type ExtractionConfig struct {
	// Concurrency describes how many repositories are processed at once
	Concurrency int `json:"concurrency"`

	// ListingsFile is a YAML listings manifest naming the repositories to process. If empty, repositories are taken
	// from the command line.
	ListingsFile string `json:"listingsFile,omitempty"`

	// RepositoriesDirectory is the directory listings without an explicit name were cloned into
	RepositoriesDirectory string `json:"repositoriesDirectory"`

	// ResultsDirectory is the directory results snapshots are written to
	ResultsDirectory string `json:"resultsDirectory"`

	// QuarantineDirectory receives repositories whose builds failed. If empty, they are left in place.
	QuarantineDirectory string `json:"quarantineDirectory"`

	// SkipBuild disables build commands so only existing build output is read
	SkipBuild bool `json:"skipBuild"`

	// TruncateBytecode shortens bytecode in printed summaries
	TruncateBytecode bool `json:"truncateBytecode"`

	// PrintSummary enables the per-repository summary on the console
	PrintSummary bool `json:"printSummary"`

	// WriteResults enables writing a results snapshot per repository
	WriteResults bool `json:"writeResults"`

	// Strict makes the run fail if any repository could not be built
	Strict bool `json:"strict"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`

	// NoColor disables colored console output
	NoColor bool `json:"noColor"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields absent from the
// file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration
	projectConfig, err := GetDefaultProjectConfig()
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the concurrency is a positive number.
	if p.Extraction.Concurrency <= 0 {
		return errors.Errorf("extraction concurrency must be a positive number")
	}

	// Results need somewhere to go
	if p.Extraction.WriteResults && p.Extraction.ResultsDirectory == "" {
		return errors.Errorf("a results directory must be provided when writing results")
	}

	// Verify the log level is one we emit
	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("invalid log level %d", p.Logging.Level)
	}

	// Verify the compilation config
	if p.Compilation == nil {
		return errors.Errorf("a compilation config must be provided")
	}
	return p.Compilation.Validate()
}
