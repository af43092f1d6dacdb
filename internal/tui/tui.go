package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/quickgerman/internal/autostart"
	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
)

// Run starts the settings TUI. configPath may be empty to use the default
// location.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	var res *config.LoadResult
	var err error
	if configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(configPath)
	}
	cfg := config.DefaultConfig()
	if err == nil {
		cfg = res.Config
	}

	store, storeErr := StoreFor(cfg, ipc.NewClient())
	if storeErr != nil {
		return storeErr
	}

	p := tea.NewProgram(newModel(res, err, ipc.NewClient(), store), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// StoreFor picks where settings edits go: the running daemon when it
// answers, the settings file otherwise.
func StoreFor(cfg *config.Config, client *ipc.Client) (SettingsStore, error) {
	if client != nil && client.Ping() == nil {
		return daemonStore{client: client}, nil
	}
	path, err := cfg.SettingsFile()
	if err != nil {
		return nil, err
	}
	store := fileStore{path: path}
	if exe, err := os.Executable(); err == nil {
		if entry, err := autostart.Default(exe); err == nil {
			store.entry = &entry
		}
	}
	return store, nil
}
