package cmd

import (
	"fmt"

	"github.com/crytic/harvester/config"
	"github.com/spf13/cobra"
)

// addExtractFlags adds the various flags for the extract command
func addExtractFlags() error {
	// Get the default project config and throw an error if we cant
	defaultConfig, err := config.GetDefaultProjectConfig()
	if err != nil {
		return err
	}

	// Prevent alphabetical sorting of usage message
	extractCmd.Flags().SortFlags = false

	// Config file
	extractCmd.Flags().String("config", "", "path to config file")

	// Listings manifest
	extractCmd.Flags().String("listings", "", "path to a YAML listings manifest naming the repositories to process")

	// Concurrency
	extractCmd.Flags().Int("concurrency", 0,
		fmt.Sprintf("number of repositories processed at once (unless a config file is provided, default is %d)", defaultConfig.Extraction.Concurrency))

	// Results directory
	extractCmd.Flags().String("results-dir", "",
		fmt.Sprintf("directory results snapshots are written to (unless a config file is provided, default is %q)", defaultConfig.Extraction.ResultsDirectory))

	// Quarantine directory
	extractCmd.Flags().String("quarantine-dir", "",
		fmt.Sprintf("directory repositories which fail to build are moved to (unless a config file is provided, default is %q)", defaultConfig.Extraction.QuarantineDirectory))

	// Skip build
	extractCmd.Flags().Bool("skip-build", false,
		fmt.Sprintf("read existing build output without running build commands (unless a config file is provided, default is %t)", defaultConfig.Extraction.SkipBuild))

	// Truncate bytecode
	extractCmd.Flags().Bool("truncate", false,
		fmt.Sprintf("truncate bytecode in printed summaries (unless a config file is provided, default is %t)", defaultConfig.Extraction.TruncateBytecode))

	// No results
	extractCmd.Flags().Bool("no-results", false, "do not write results snapshots")

	// Strict mode
	extractCmd.Flags().Bool("strict", false,
		fmt.Sprintf("exit with a non-zero code if any repository fails to build (unless a config file is provided, default is %t)", defaultConfig.Extraction.Strict))

	// Platforms
	extractCmd.Flags().StringSlice("platforms", []string{},
		fmt.Sprintf("platforms to attempt, most preferred first (unless a config file is provided, default is %v)", defaultConfig.Compilation.PlatformOrder))
	return nil
}

// updateProjectConfigWithExtractFlags will update the given projectConfig with any CLI arguments that were provided to
// the extract command
func updateProjectConfigWithExtractFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update listings file
	if cmd.Flags().Changed("listings") {
		projectConfig.Extraction.ListingsFile, err = cmd.Flags().GetString("listings")
		if err != nil {
			return err
		}
	}

	// Update concurrency
	if cmd.Flags().Changed("concurrency") {
		projectConfig.Extraction.Concurrency, err = cmd.Flags().GetInt("concurrency")
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

	// Update quarantine directory
	if cmd.Flags().Changed("quarantine-dir") {
		projectConfig.Extraction.QuarantineDirectory, err = cmd.Flags().GetString("quarantine-dir")
		if err != nil {
			return err
		}
	}

	// Update skip build
	if cmd.Flags().Changed("skip-build") {
		projectConfig.Extraction.SkipBuild, err = cmd.Flags().GetBool("skip-build")
		if err != nil {
			return err
		}
	}

	// Update bytecode truncation
	if cmd.Flags().Changed("truncate") {
		projectConfig.Extraction.TruncateBytecode, err = cmd.Flags().GetBool("truncate")
		if err != nil {
			return err
		}
	}

	// Update results writing
	if cmd.Flags().Changed("no-results") {
		noResults, err := cmd.Flags().GetBool("no-results")
		if err != nil {
			return err
		}
		projectConfig.Extraction.WriteResults = !noResults
	}

	// Update strict mode
	if cmd.Flags().Changed("strict") {
		projectConfig.Extraction.Strict, err = cmd.Flags().GetBool("strict")
		if err != nil {
			return err
		}
	}

	// Update platform order
	if cmd.Flags().Changed("platforms") {
		projectConfig.Compilation.PlatformOrder, err = cmd.Flags().GetStringSlice("platforms")
		if err != nil {
			return err
		}
	}
	return nil
}
