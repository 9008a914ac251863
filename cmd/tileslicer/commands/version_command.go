package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	command := &cobra.Command{
		Use:   "version",
		Short: "Print the version of the application",
		Long:  "Print the version of the application",
		Run:   VersionCommand,
	}
	AddCommand(command)
}

func VersionCommand(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "TileSlicer %s [%s] built [%s]\n", versionInfo.version, versionInfo.commit, versionInfo.date)
}
