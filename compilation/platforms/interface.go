package platforms

import (
	"strings"

	"github.com/crytic/harvester/compilation/types"
)

// Command describes a single external command invocation used to produce build output.
type Command struct {
	// Name is the executable to run
	Name string `json:"name"`
	// Args are the arguments passed to the executable
	Args []string `json:"args,omitempty"`
}

// String returns the command line as it would be typed in a shell.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// BuildMode describes one way of invoking a toolchain, e.g. through a particular package manager.
type BuildMode struct {
	// Name identifies the mode in logs and results
	Name string
	// Commands are run in order in the repository directory
	Commands []Command
}

// PlatformConfig describes the interface all compilation platform configs must implement. A platform knows how to
// recognize a repository built with its toolchain, how to invoke that toolchain, and how to read the artifacts it
// produces in two passes.
type PlatformConfig interface {
	// Platform returns the identifier of the platform
	Platform() string

	// MarkerFiles returns the file names whose presence in a directory declares the toolchain
	MarkerFiles() []string

	// BuildModes returns the ways of invoking the toolchain, most preferred first
	BuildModes() []BuildMode

	// OutputDirectory returns the directory build output is expected in for the given repository
	OutputDirectory(repositoryPath string) string

	// Populate walks the output directory and creates one record per valid artifact
	Populate(reader *ArtifactReader, outputRoot string) *types.ContractRegistry

	// ResolveImports walks the output directory again and attaches the imports of every record, resolved against a
	// snapshot of the registry taken before the walk
	ResolveImports(reader *ArtifactReader, outputRoot string, registry *types.ContractRegistry)
}
