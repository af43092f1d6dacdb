package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/quickgerman/internal/activity"
	"github.com/1broseidon/quickgerman/internal/autostart"
	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/platform"
	"github.com/1broseidon/quickgerman/internal/runtimepath"
	"github.com/1broseidon/quickgerman/internal/settings"
)

// ErrAlreadyRunning is returned by Run when another daemon answers on the
// IPC socket.
var ErrAlreadyRunning = errors.New("quickgerman daemon is already running")

// reconcileInterval is how often bounds are flushed and the autostart
// entry is checked.
const reconcileInterval = 10 * time.Second

// Run starts the daemon on backend and blocks until it quits. The backend
// is closed before Run returns.
func Run(cfg *config.Config, backend platform.Backend) error {
	defer backend.Close()

	if err := ipc.NewClient().Ping(); err == nil {
		return ErrAlreadyRunning
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	pidPath, err := runtimepath.PIDPath()
	if err != nil {
		return fmt.Errorf("failed to resolve pid file: %w", err)
	}
	if err := writePIDFile(pidPath); err != nil {
		return err
	}
	defer os.Remove(pidPath)

	opts, err := storesFor(cfg, logger)
	if err != nil {
		return err
	}
	opts.Backend = backend
	opts.Logger = logger
	opts.LogLevel = level

	app, err := New(opts)
	if err != nil {
		return err
	}
	defer app.Close()
	log.Printf("Overlay ready (provider: %s, direction: %s, hotkeys: %s)",
		cfg.Translation.Provider, cfg.Translation.DefaultDirection, cfg.Hotkeys.Source)

	ipcServer, err := ipc.NewServer(app.IPCHandler(), logger.With("component", "ipc"))
	if err != nil {
		return err
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()
	log.Printf("IPC server listening on %s", ipcServer.SocketPath())

	app.Start()

	reconciler := NewReconciler(ReconcilerConfig{
		Interval: reconcileInterval,
		Logger:   logger.With("component", "reconciler"),
	}, app)
	reconciler.ReconcileNow()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-app.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					if err := app.Reload(); err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					log.Println("Config reloaded successfully")
				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down quickgerman daemon...")
					app.Quit()
					return
				}
			}
		}
	}()

	log.Println("quickgerman daemon started successfully")
	log.Println("Entering event loop...")
	backend.Run()

	app.Quit()
	log.Println("quickgerman daemon stopped")
	return nil
}

// storesFor loads the bounds and settings documents and opens the activity
// log. Unreadable state falls back to defaults and is only logged.
func storesFor(cfg *config.Config, logger *slog.Logger) (Options, error) {
	var opts Options
	opts.Config = cfg

	boundsPath, err := cfg.BoundsFile()
	if err != nil {
		return opts, err
	}
	opts.Bounds, err = bounds.Load(boundsPath)
	if err != nil {
		logger.Warn("using default window bounds", "error", err)
	}

	settingsPath, err := cfg.SettingsFile()
	if err != nil {
		return opts, err
	}
	opts.Settings, err = settings.Load(settingsPath)
	if err != nil {
		logger.Warn("settings fell back to defaults", "error", err)
	}

	if exe, err := os.Executable(); err != nil {
		logger.Warn("autostart disabled", "error", err)
	} else if entry, err := autostart.Default(exe); err != nil {
		logger.Warn("autostart disabled", "error", err)
	} else {
		opts.Autostart = &entry
	}

	al := cfg.GetActivityLogConfig()
	opts.Activity, err = activity.New(activity.Config{
		Enabled:       al.Enabled,
		FilePath:      al.File,
		MaxSizeMB:     al.MaxSizeMB,
		MaxFiles:      al.MaxFiles,
		PreviewLength: al.PreviewLength,
	})
	if err != nil {
		logger.Warn("activity log disabled", "error", err)
		opts.Activity = nil
	}
	return opts, nil
}

func writePIDFile(path string) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

// ReadPID returns the pid recorded by a running daemon.
func ReadPID() (int, error) {
	path, err := runtimepath.PIDPath()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}
