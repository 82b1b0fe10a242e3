package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/walletmux/config"
)

const serviceName = "walletmux"

// newRootCmd builds the command tree. Flags live on the returned command so
// tests can run several trees side by side.
func newRootCmd() *cobra.Command {
	var configFile, envFile string

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Multiplex wallet providers behind one JSON-RPC endpoint",
		Long: `walletmux discovers the configured wallet endpoints, lets you pick one as
the active wallet and forwards JSON-RPC requests and wallet events to it.

Example:
  walletmux serve --config walletmux.yml
  walletmux providers --config walletmux.yml
  WALLETMUX_BRIDGE_PORT=9000 walletmux serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: search ./config.yml, ./walletmux.yml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file (default: search ./.env)")

	load := func() (*config.Config, error) {
		var opts []config.LoaderOption
		if configFile != "" {
			opts = append(opts, config.WithConfigFile(configFile))
		}
		if envFile != "" {
			opts = append(opts, config.WithEnvFile(envFile))
		}
		return config.Load(serviceName, opts...)
	}

	root.AddCommand(newServeCmd(load), newProvidersCmd(load), newVersionCmd())
	return root
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
