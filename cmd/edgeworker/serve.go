package main

import (
	"os"
	"os/signal"
	"syscall"

	ewhttp "github.com/aura-studio/edgeworker/http"
	"github.com/aura-studio/edgeworker/logger"
	"github.com/aura-studio/edgeworker/module"
	"github.com/aura-studio/edgeworker/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var (
		addr    string
		source  string
		preload bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the module over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := serverOptions(server.ModeHTTP)
			if err != nil {
				return err
			}
			if addr != "" {
				opts = append(opts, server.WithHTTPOptions(ewhttp.WithAddress(addr)))
			}
			if source != "" {
				opts = append(opts, server.WithModuleOptions(module.WithSource(source)))
			}
			if preload {
				opts = append(opts, server.WithModuleOptions(module.WithPreload(true)))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				logger.L().Info("shutting down")
				if err := server.Close(); err != nil {
					logger.L().Error("shutdown failed", zap.Error(err))
				}
			}()

			return server.Serve(opts...)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&source, "module", "", "module source: path, file:// or s3://bucket/key")
	cmd.Flags().BoolVar(&preload, "preload", false, "initialize the module before the first request")
	return cmd
}

// newLambdaCmd creates the 'lambda' subcommand.
func newLambdaCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run as the AWS Lambda handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := serverOptions(server.ModeLambda)
			if err != nil {
				return err
			}
			if source != "" {
				opts = append(opts, server.WithModuleOptions(module.WithSource(source)))
			}
			return server.Serve(opts...)
		},
	}
	cmd.Flags().StringVar(&source, "module", "", "module source: path, file:// or s3://bucket/key")
	return cmd
}
