package daemon

import (
	"context"
	"log/slog"
	"time"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically flushes the overlay bounds and corrects drift
// between the startOnStartup setting and the autostart entry on disk.
type Reconciler struct {
	interval time.Duration
	app      *App
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, app *App) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		app:      app,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if r.app.Visible() {
		r.app.controller.SaveBounds()
	}
	r.app.syncAutostart()
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}

// syncAutostart writes or removes the login entry so that it matches the
// startOnStartup setting.
func (a *App) syncAutostart() {
	if a.entry == nil {
		return
	}
	want := a.settingSt.Get().StartOnStartup
	if a.entry.Enabled() == want {
		return
	}
	if err := a.entry.Set(want); err != nil {
		a.logger.Warn("failed to update autostart entry", "path", a.entry.Path, "enabled", want, "error", err)
		return
	}
	a.logger.Info("autostart entry updated", "path", a.entry.Path, "enabled", want)
}
