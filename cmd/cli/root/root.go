package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "acct",
	Short:         "Account service CLI",
	Long:          "Command line interface for registering, logging in and listing accounts on the account service.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns the RootCmd so subcommand packages can attach to it.
func GetRoot() *cobra.Command {
	return RootCmd
}
