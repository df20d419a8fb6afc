// Package commands implements the safelease CLI command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/safelease/internal/logger"
)

var debug bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "safelease",
	Short: "Disk-based mutual-exclusion lease over a shared sector",
	Long: `safelease coordinates exclusive ownership of a resource across
independent hosts sharing a block device or file, without a network
coordinator. A lease lives in a single 512-byte sector at a caller-chosen
offset.

Use "safelease [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDebug(debug)
	},
}

// Execute adds all child commands to the root command and runs it. This is
// called by main.main(). It only needs to happen once to rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "raise log verbosity to debug")

	rootCmd.AddCommand(acquireCmd)
	rootCmd.AddCommand(renewCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(queryCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
