package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive settings editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(configPath)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
