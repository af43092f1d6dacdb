package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "quickgerman",
	Short: "German/English translation overlay for X11",
	Long: "quickgerman keeps a drop-down translation overlay ready behind a global hotkey.\n" +
		"Run 'quickgerman daemon' once per session, then drive it with the other commands.",
	SilenceUsage: true,
}

var configPath string

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/quickgerman/config.yaml)")
}

// loadConfig reads the config named by --config, or the default location.
func loadConfig() (*config.Config, error) {
	res, err := loadConfigWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func loadConfigWithSources() (*config.LoadResult, error) {
	if configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(configPath)
}

// newClient returns the IPC client used by control commands.
var newClient = func() *ipc.Client {
	return ipc.NewClient()
}

func daemonNotRunning(err error) error {
	return fmt.Errorf("daemon not reachable (is 'quickgerman daemon' running?): %w", err)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
