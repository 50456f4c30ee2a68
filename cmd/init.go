package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/harvester/compilation"
	"github.com/crytic/harvester/config"
	"github.com/crytic/harvester/listings"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/exp/slices"
)

// Get supported platforms for customized static completions of "init" flag `$ harvester init <tab> <tab>`
// and to cache supported platforms for CLI arguments validation
var supportedPlatforms = compilation.GetSupportedCompilationPlatforms()

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:               "init [platforms...]",
	Short:             "Initializes a project configuration",
	Long:              `Initializes a project configuration. If platforms are provided, only those are attempted, in the order given`,
	Args:              cmdValidateInitArgs,
	ValidArgsFunction: cmdValidInitArgs,
	RunE:              cmdRunInit,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to init command
	err := addInitFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the init command", err)
	}

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdValidInitArgs will return which flags and platforms are valid for dynamic completion for the init command
func cmdValidInitArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})

	// Suggest the platforms which have not been listed yet
	for _, platform := range supportedPlatforms {
		if !slices.Contains(args, platform) {
			unusedFlags = append(unusedFlags, platform)
		}
	}
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateInitArgs ensures every provided argument refers to a supported platform, at most once
func cmdValidateInitArgs(cmd *cobra.Command, args []string) error {
	for i, platform := range args {
		if !compilation.IsSupportedCompilationPlatform(platform) {
			err := fmt.Errorf("init was provided invalid platform argument '%s' (options: %s)", platform, strings.Join(supportedPlatforms, ", "))
			cmdLogger.Error("Failed to validate args to the init command", err)
			return err
		}
		if slices.Contains(args[:i], platform) {
			err := fmt.Errorf("init was provided platform '%s' more than once", platform)
			cmdLogger.Error("Failed to validate args to the init command", err)
			return err
		}
	}
	return nil
}

// cmdRunInit executes the init CLI command and updates the project configuration with any flags
func cmdRunInit(cmd *cobra.Command, args []string) error {
	// Check to see if --out flag was used and store the value of --out flag
	outputFlagUsed := cmd.Flags().Changed("out")
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	// If we weren't provided an output path (flag was not used), we use our working directory
	if !outputFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the init command", err)
			return err
		}
		outputPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	projectConfig, err := config.GetDefaultProjectConfig()
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Restrict the platforms to the ones provided
	if len(args) > 0 {
		projectConfig.Compilation.PlatformOrder = args
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithInitFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	if _, err = os.Stat(outputPath); err == nil {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			cmdLogger.Error("Failed to run the init command", err)
			return err
		}

		// Prompt user for overwrite confirmation
		if !force {
			fmt.Print("The file already exists. Overwrite? (y/n): ")
			var response string
			if _, err := fmt.Scan(&response); err != nil {
				cmdLogger.Error("Failed to scan input", err)
				return err
			}
			if response != "y" && response != "Y" {
				fmt.Println("Operation canceled.")
				return nil
			}
		}
	}

	// Write our project configuration
	err = projectConfig.WriteToFile(outputPath)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Create the referenced listings manifest so it can be filled in
	err = createListingsFile(projectConfig.Extraction.ListingsFile)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Print a success message
	if absoluteOutputPath, err := filepath.Abs(outputPath); err == nil {
		outputPath = absoluteOutputPath
	}
	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}

// createListingsFile writes an empty listings manifest to path. Nothing is written if path is empty or already exists.
func createListingsFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.MakeDirectory(dir); err != nil {
			return err
		}
	}
	if err := listings.WriteListings(path, []listings.Listing{}); err != nil {
		return err
	}
	cmdLogger.Info("Listings manifest created at: ", colors.Bold, path, colors.Reset)
	return nil
}
