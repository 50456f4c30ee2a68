package compilation

import (
	"path/filepath"

	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
	"github.com/pkg/errors"
)

// RepositoryRouter decides where a repository goes once it could not produce any contract records.
type RepositoryRouter interface {
	// Quarantine is called for a repository whose toolchain was detected but whose builds produced nothing.
	Quarantine(repositoryPath string) error
	// Unsupported is called for a repository in which no toolchain marker was found.
	Unsupported(repositoryPath string) error
}

// DirectoryRouter moves failed repositories into a quarantine directory and leaves unsupported ones in place.
type DirectoryRouter struct {
	// QuarantineDirectory receives repositories whose builds failed. If empty, repositories are not moved.
	QuarantineDirectory string
	// Logger is used to report routing decisions. If nil, the global logger is used.
	Logger *logging.Logger
}

func (r *DirectoryRouter) logger() *logging.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE)
}

// Quarantine moves the repository into the quarantine directory, keeping its directory name.
func (r *DirectoryRouter) Quarantine(repositoryPath string) error {
	if r.QuarantineDirectory == "" {
		r.logger().Warn("Build failed for ", colors.Bold, repositoryPath, colors.Reset, ", leaving it in place")
		return nil
	}

	target := filepath.Join(r.QuarantineDirectory, filepath.Base(filepath.Clean(repositoryPath)))
	if err := utils.MoveDirectory(repositoryPath, target); err != nil {
		return errors.Wrapf(err, "could not quarantine %s", repositoryPath)
	}
	r.logger().Warn("Build failed for ", colors.Bold, repositoryPath, colors.Reset, ", moved to ", target)
	return nil
}

// Unsupported logs that no toolchain was found in the repository.
func (r *DirectoryRouter) Unsupported(repositoryPath string) error {
	r.logger().Warn("No supported toolchain found in ", colors.Bold, repositoryPath, colors.Reset)
	return nil
}
