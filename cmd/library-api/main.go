// ABOUTME: Entry point for the library-api server and its admin commands
// ABOUTME: Builds the cobra command tree and resolves the config file location

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var version = "dev"

const banner = `
  _ _ _                                      _
 | (_) |__  _ __ __ _ _ __ _   _        __ _ _ __ (_)
 | | | '_ \| '__/ _' | '__| | | |_____ / _' | '_ \| |
 | | | |_) | | | (_| | |  | |_| |_____| (_| | |_) | |
 |_|_|_.__/|_|  \__,_|_|   \__, |      \__,_| .__/|_|
                           |___/            |_|
`

// getConfigPath returns the path to the config file.
// Priority: --config flag > LIBRARY_CONFIG env var > XDG_CONFIG_HOME/library-api/config.yaml > ~/.config/library-api/config.yaml
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv("LIBRARY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "library-api", "config.yaml")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configFlag string

	cmd := &cobra.Command{
		Use:           "library-api",
		Short:         "Library management HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file path (YAML or .toml)")

	configPath := func() string { return getConfigPath(configFlag) }

	cmd.AddCommand(
		serveCmd(configPath),
		initCmd(configPath),
		bootstrapCmd(configPath),
		healthCmd(configPath),
		tokenCmd(configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "library-api version %s\n", version)
			},
		},
	)
	return cmd
}
