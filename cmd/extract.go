package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"

	"github.com/crytic/harvester/cmd/exitcodes"
	"github.com/crytic/harvester/compilation"
	"github.com/crytic/harvester/config"
	"github.com/crytic/harvester/listings"
	"github.com/crytic/harvester/logging"
	"github.com/crytic/harvester/logging/colors"
	"github.com/crytic/harvester/reporting"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// extractCmd represents the command provider for extraction
var extractCmd = &cobra.Command{
	Use:               "extract [repository paths...]",
	Short:             "Builds repositories and extracts their contract records",
	Long:              `Builds each repository with the first toolchain that produces output and extracts its contracts, interfaces, and import graph`,
	ValidArgsFunction: cmdValidExtractArgs,
	RunE:              cmdRunExtract,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the extract command
	err := addExtractFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the extract command", err)
	}

	// Add the extract command and its associated flags to the root command
	rootCmd.AddCommand(extractCmd)
}

// extractionTarget is a repository to process along with the source it was listed by.
type extractionTarget struct {
	path   string
	source string
}

// cmdValidExtractArgs will return which flags are valid for dynamic completion for the extract command. Positional
// arguments are directories.
func cmdValidExtractArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveFilterDirs
}

// loadProjectConfig navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (harvester.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If harvester.json can't be found, use the default project configuration.
// Relative paths in the configuration are resolved against the working directory.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `harvester.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		return config.ReadProjectConfigFromFile(configPath)
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed {
		return nil, errors.WithStack(existenceError)
	}

	// Possibility #3: --config flag was not used and harvester.json was not found, so use the default project config
	cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
	return config.GetDefaultProjectConfig()
}

// collectTargets returns the repositories named on the command line followed by those of the listings manifest.
func collectTargets(args []string, extractionConfig config.ExtractionConfig) ([]extractionTarget, error) {
	targets := make([]extractionTarget, 0, len(args))
	for _, arg := range args {
		targets = append(targets, extractionTarget{path: arg, source: listings.DefaultSource})
	}

	if extractionConfig.ListingsFile != "" {
		listed, err := listings.LoadListings(extractionConfig.ListingsFile)
		if err != nil {
			return nil, err
		}
		for _, listing := range listed {
			targets = append(targets, extractionTarget{
				path:   listing.LocalPath(extractionConfig.RepositoriesDirectory),
				source: listing.Source,
			})
		}
	}
	return targets, nil
}

// cmdRunExtract executes the CLI extract command. Repositories are processed concurrently up to the configured limit.
func cmdRunExtract(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the extract command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithExtractFlags(cmd, projectConfig)
	if err == nil {
		err = projectConfig.Validate()
	}
	if err != nil {
		cmdLogger.Error("Failed to run the extract command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	closeLogs, err := setupLogging(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to set up logging", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeLogs()
	logger := logging.GlobalLogger.NewSubLogger("module", logging.CLI_SERVICE)

	targets, err := collectTargets(args, projectConfig.Extraction)
	if err == nil && len(targets) == 0 {
		err = errors.New("no repositories to process, provide repository paths or a listings file")
	}
	if err != nil {
		logger.Error("Failed to run the extract command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	selector, err := newSelector(projectConfig)
	if err != nil {
		logger.Error("Failed to run the extract command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Stop scheduling repositories on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := processTargets(ctx, selector, targets, projectConfig.Extraction, logger)
	logger.Info(reporting.SummarizeRun(results).Args()...)
	if err != nil {
		logger.Error("Failed to run the extract command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// In strict mode, any repository which could not be built fails the run
	if projectConfig.Extraction.Strict {
		for _, result := range results {
			if result.Status == compilation.SelectionStatusBuildFailed {
				return exitcodes.NewErrorWithExitCode(errors.New("one or more repositories failed to build"), exitcodes.ExitCodeBuildFailures)
			}
		}
	}
	return nil
}

// newSelector creates the Selector for the run from the project config.
func newSelector(projectConfig *config.ProjectConfig) (*compilation.Selector, error) {
	logger := logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE)

	var runner compilation.BuildRunner = compilation.ExecBuildRunner{Logger: logger}
	if projectConfig.Extraction.SkipBuild {
		runner = compilation.NoopBuildRunner{}
	}
	router := &compilation.DirectoryRouter{
		QuarantineDirectory: projectConfig.Extraction.QuarantineDirectory,
		Logger:              logger,
	}

	selector, err := compilation.NewSelector(projectConfig.Compilation, runner, router)
	if err != nil {
		return nil, err
	}
	selector.Logger = logger
	return selector, nil
}

// processTargets runs the selector on every target, at most Concurrency at a time, and reports each result as it
// completes. Results are returned in target order. Targets not started before the context is cancelled are skipped.
func processTargets(ctx context.Context, selector *compilation.Selector, targets []extractionTarget, extractionConfig config.ExtractionConfig, logger *logging.Logger) ([]compilation.SelectionResult, error) {
	results := make([]compilation.SelectionResult, len(targets))
	started := make([]bool, len(targets))
	runID := uuid.New()

	// Report progress as each repository reaches a terminal outcome
	var completed atomic.Int64
	selector.Events.RepositoryProcessed.Subscribe(func(event compilation.RepositoryProcessedEvent) {
		logger.Info("[", completed.Add(1), "/", len(targets), "] ", event.Repository, ": ", string(event.Result.Status))
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extractionConfig.Concurrency)
	for i, target := range targets {
		if ctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			results[i] = selector.Process(target.path)
			return reportResult(results[i], target.source, runID, extractionConfig, logger)
		})
	}
	err := g.Wait()

	// Drop the targets which were never started
	processed := make([]compilation.SelectionResult, 0, len(targets))
	for i := range targets {
		if started[i] {
			processed = append(processed, results[i])
		}
	}
	if err == nil && ctx.Err() != nil && len(processed) < len(targets) {
		logger.Warn("Interrupted, ", len(targets)-len(processed), " repositories were not processed")
	}
	return processed, err
}

// reportResult prints the summary and writes the results snapshot of a built repository.
func reportResult(result compilation.SelectionResult, source string, runID uuid.UUID, extractionConfig config.ExtractionConfig, logger *logging.Logger) error {
	if result.Status != compilation.SelectionStatusBuilt {
		return nil
	}
	if extractionConfig.PrintSummary {
		logger.Info(reporting.SummarizeResult(result.Result, extractionConfig.TruncateBytecode).Args()...)
	}
	if !extractionConfig.WriteResults {
		return nil
	}

	path, changed, err := reporting.WriteResultsFile(extractionConfig.ResultsDirectory, source, result.Result, runID)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("Results written to ", colors.Bold, path, colors.Reset)
	} else {
		logger.Info("Results written to ", colors.Bold, path, colors.Reset, " (unchanged since the previous run)")
	}
	return nil
}
