package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/autostart"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/tui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or change overlay preferences",
	Long:  "Changes go through the running daemon so they apply at once; without a daemon the settings file is written directly.",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print all settings, or one key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change one setting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: settings.Keys,
	RunE:      runSettingsSet,
}

var autostartCmd = &cobra.Command{
	Use:       "autostart <enable|disable|status>",
	Short:     "Manage the login autostart entry",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"enable", "disable", "status"},
	RunE:      runAutostart,
}

func init() {
	rootCmd.AddCommand(settingsCmd, autostartCmd)
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	settingsGetCmd.Flags().Bool("json", false, "Print settings as JSON")
}

func settingsStore() (tui.SettingsStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return tui.StoreFor(cfg, newClient())
}

func settingValue(s settings.AppSettings, key string) (string, error) {
	switch strings.ToLower(key) {
	case "spellcheck":
		return strconv.FormatBool(s.Spellcheck), nil
	case "startonstartup", "start_on_startup":
		return strconv.FormatBool(s.StartOnStartup), nil
	case "theme":
		return string(s.Theme), nil
	case "hotkey":
		return s.Hotkey, nil
	default:
		return "", fmt.Errorf("unknown setting %q", key)
	}
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := settingsStore()
	if err != nil {
		return err
	}
	current, err := store.Load()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		v, err := settingValue(current, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, current)
	}
	for _, k := range settings.Keys {
		v, _ := settingValue(current, k)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, v)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	store, err := settingsStore()
	if err != nil {
		return err
	}
	current, err := store.Load()
	if err != nil {
		return err
	}
	if err := current.Apply(args[0], args[1]); err != nil {
		return err
	}
	if err := store.Save(current); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set (%s)\n", args[0], store.Target())
	return nil
}

func runAutostart(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "enable":
		on = true
	case "disable":
	case "status":
		return printAutostartStatus(cmd)
	default:
		return fmt.Errorf("unknown autostart action %q (want enable, disable or status)", args[0])
	}

	client := newClient()
	if client.Ping() == nil {
		if err := client.SetStartOnLogin(on); err != nil {
			return err
		}
	} else {
		store, err := settingsStore()
		if err != nil {
			return err
		}
		current, err := store.Load()
		if err != nil {
			return err
		}
		current.StartOnStartup = on
		if err := store.Save(current); err != nil {
			return err
		}
	}
	return printAutostartStatus(cmd)
}

func printAutostartStatus(cmd *cobra.Command) error {
	entry, err := autostartEntry()
	if err != nil {
		return err
	}
	state := "disabled"
	if entry.Enabled() {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "autostart: %s (%s)\n", state, entry.Path)
	return nil
}

var autostartEntry = func() (autostart.Entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return autostart.Entry{}, err
	}
	return autostart.Default(exe)
}
