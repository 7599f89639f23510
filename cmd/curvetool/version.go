package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curve-plotter/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of curvetool",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "curvetool %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
