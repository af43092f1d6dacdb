package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/palette"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open an action menu in rofi or dmenu",
	Long:  "Lists overlay actions in a launcher menu and sends the chosen one to the daemon. Bind it to a key in your window manager.",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.Flags().String("backend", "", "Menu backend: auto, rofi or dmenu (default: config palette_backend)")
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	name, _ := cmd.Flags().GetString("backend")
	if name == "" {
		name = cfg.PaletteBackend
	}

	backend, err := palette.NewBackend(name)
	if err != nil {
		return err
	}
	if _, err := palette.Run(backend, newClient()); err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return nil
		}
		return err
	}
	return nil
}
