package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/daemon"
	"github.com/1broseidon/quickgerman/internal/platform"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the overlay daemon in the foreground",
	Long: "Connects to the X server, registers the global hotkey and serves control commands\n" +
		"on the runtime socket. Only one daemon runs per session.",
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}

	err = daemon.Run(cfg, backend)
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		if pid, pidErr := daemon.ReadPID(); pidErr == nil {
			return fmt.Errorf("%w (pid %d)", err, pid)
		}
	}
	return err
}
