package main

import (
	"fmt"

	"github.com/aura-studio/edgeworker/module"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			info := module.ReadBuildInfo()
			version := info.Version
			if version == "" {
				version = "(devel)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "edgeworker %s\n", version)
			if info.Built != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", info.Built)
			}
		},
	}
}
