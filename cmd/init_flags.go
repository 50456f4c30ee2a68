package cmd

import (
	"github.com/crytic/harvester/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Overwrite without prompting
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration file without prompting")

	// Directories
	initCmd.Flags().String("repos-dir", "", "directory listed repositories are cloned into")
	initCmd.Flags().String("results-dir", "", "directory results snapshots are written to")
	initCmd.Flags().String("log-dir", "", "directory structured log files are written to")

	// Listings manifest
	initCmd.Flags().String("listings", "", "YAML listings manifest to reference, created empty if it does not exist")
	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update repositories directory
	if cmd.Flags().Changed("repos-dir") {
		projectConfig.Extraction.RepositoriesDirectory, err = cmd.Flags().GetString("repos-dir")
		if err != nil {
			return err
		}
	}

	// Update results directory
	if cmd.Flags().Changed("results-dir") {
		projectConfig.Extraction.ResultsDirectory, err = cmd.Flags().GetString("results-dir")
		if err != nil {
			return err
		}
	}

	// Update log directory
	if cmd.Flags().Changed("log-dir") {
		projectConfig.Logging.LogDirectory, err = cmd.Flags().GetString("log-dir")
		if err != nil {
			return err
		}
	}
	// Update listings file
	if cmd.Flags().Changed("listings") {
		projectConfig.Extraction.ListingsFile, err = cmd.Flags().GetString("listings")
		if err != nil {
			return err
		}
	}
	return projectConfig.Validate()
}
