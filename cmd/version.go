package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set by the linker
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chyp8 %s\n", version)
	},
}
