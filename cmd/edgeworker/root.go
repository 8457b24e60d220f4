package main

import (
	"fmt"

	"github.com/aura-studio/edgeworker/logger"
	"github.com/aura-studio/edgeworker/server"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

// NewRootCmd creates the root 'edgeworker' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "edgeworker",
		Short:         "Serve a compiled module behind HTTP or AWS Lambda",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to edgeworker YAML config (default: search well-known locations)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")

	rootCmd.AddCommand(
		newServeCmd(),
		newLambdaCmd(),
		newProbeCmd(),
		newCallCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// serverOptions turns the persistent flags into server options for mode. An
// explicit --config must exist; otherwise the default config files are used
// when present.
func serverOptions(mode string) (opts []server.Option, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	opts = append(opts, server.WithMode(mode))
	if configPath != "" {
		opts = append(opts, server.WithServeConfigFile(configPath))
	} else {
		opts = append(opts, server.WithDefaultServeConfig())
	}
	if debug {
		opts = append(opts, server.WithLoggerOptions(logger.WithLevel("debug"), logger.WithEncoding("console")))
	}
	return opts, nil
}
