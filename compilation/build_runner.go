package compilation

import (
	"os/exec"

	"github.com/crytic/harvester/compilation/platforms"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/utils"
	"github.com/pkg/errors"
)

// BuildRunner runs a single toolchain command inside a repository directory.
type BuildRunner interface {
	Run(directory string, command platforms.Command) error
}

// ExecBuildRunner runs commands as child processes.
type ExecBuildRunner struct {
	// Logger receives the command output at debug level. If nil, the global logger is used.
	Logger *logging.Logger
}

// Run executes the command in the given directory and returns an error carrying the stderr output if it fails.
func (r ExecBuildRunner) Run(directory string, command platforms.Command) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE)
	}

	cmd := exec.Command(utils.ExecutableName(command.Name), command.Args...)
	cmd.Dir = directory

	logger.Debug("Running ", command.String(), " in ", directory)
	_, stderr, combined, err := utils.RunCommandWithOutputAndError(cmd)
	if len(combined) > 0 {
		logger.Debug(string(combined))
	}
	if err != nil {
		return errors.Errorf("error while executing %s:\nOUTPUT:\n%s\nERROR: %s\n", command.String(), string(stderr), err.Error())
	}
	return nil
}

// NoopBuildRunner skips every command. It is used when only existing build output should be read.
type NoopBuildRunner struct{}

// Run does nothing and reports success.
func (NoopBuildRunner) Run(string, platforms.Command) error {
	return nil
}
