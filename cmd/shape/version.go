package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/shape"
	"github.com/aretw0/shape/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shape",
	Run: func(cmd *cobra.Command, args []string) {
		version := strings.TrimSpace(shape.Version)
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), tui.Profile(os.Stdout), version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "shape version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
