package cmd

import (
	"io"
	"os"

	"github.com/crytic/harvester/config"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
	"github.com/rs/zerolog"
)

// cmdLogger is the logger used by the commands before and outside of a configured run.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel)

func init() {
	cmdLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, true)
	cmdLogger = cmdLogger.NewSubLogger("module", logging.CLI_SERVICE)
}

// setupLogging replaces the global logger with one configured from the project config: colored or plain console
// output, plus a structured log file if a log directory is set. The returned function closes the log file.
func setupLogging(loggingConfig config.LoggingConfig) (func(), error) {
	if loggingConfig.NoColor {
		colors.DisableColor()
	}

	logger := logging.NewLogger(loggingConfig.Level)
	logger.AddWriter(os.Stdout, logging.UNSTRUCTURED, !loggingConfig.NoColor)

	var logFile io.Closer
	if loggingConfig.LogDirectory != "" {
		file, err := utils.CreateFile(loggingConfig.LogDirectory, DefaultLogFileName)
		if err != nil {
			return nil, err
		}
		logger.AddWriter(file, logging.STRUCTURED, false)
		logFile = file
	}
	logging.GlobalLogger = logger

	return func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}, nil
}
