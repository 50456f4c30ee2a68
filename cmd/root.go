package cmd

import (
	"github.com/crytic/harvester/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "harvester",
	Short:   "A smart contract artifact harvester for bounty repositories",
	Long:    "harvester builds smart contract bounty repositories and extracts their contracts, interfaces, and import graphs",
	Version: version.GetInfo().Short(),
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
