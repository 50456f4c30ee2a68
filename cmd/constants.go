package cmd

import "github.com/crytic/harvester/config"

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = config.DefaultProjectConfigFilename

// DefaultLogFileName describes the name of the structured log file written when a log directory is configured.
const DefaultLogFileName = "harvester.log"
