// Package daemon wires the overlay components into the running
// quickgerman process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/quickgerman/internal/activity"
	"github.com/1broseidon/quickgerman/internal/autostart"
	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/capture"
	"github.com/1broseidon/quickgerman/internal/clock"
	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/coordinator"
	"github.com/1broseidon/quickgerman/internal/hotkeys"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/overlay"
	"github.com/1broseidon/quickgerman/internal/panel"
	"github.com/1broseidon/quickgerman/internal/platform"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/translate"
)

// WindowTitle is the overlay window's title.
const WindowTitle = "QuickGerman"

// Options holds the collaborators of an App. Config and Backend are
// required; everything else has a default.
type Options struct {
	Config  *config.Config
	Backend platform.Backend

	Bounds   *bounds.Store
	Settings *settings.Store

	// Translator overrides the provider built from Config.
	Translator translate.Translator
	Clipboard  capture.Clipboard
	Copier     capture.Copier
	Clock      clock.Clock

	// Autostart is the login entry kept in step with the startOnStartup
	// setting. Nil disables it.
	Autostart *autostart.Entry
	Activity  *activity.Logger

	// LoadConfig is used by Reload. It defaults to config.Load.
	LoadConfig func() (*config.Config, error)

	Logger   *slog.Logger
	LogLevel *slog.LevelVar
}

// App is the running overlay: window, hotkeys, capture and translation.
type App struct {
	backend   platform.Backend
	surface   platform.Surface
	boundsSt  *bounds.Store
	settingSt *settings.Store
	entry     *autostart.Entry
	activity  *activity.Logger
	logger    *slog.Logger
	level     *slog.LevelVar
	load      func() (*config.Config, error)

	translator *swappableTranslator
	controller *overlay.Controller
	coord      *coordinator.Coordinator
	capture    *capture.Flow
	dispatcher *hotkeys.Dispatcher

	cfgMu sync.Mutex
	cfg   *config.Config

	// mu guards the editor, which is fed from the X event loop and from
	// captured or swapped text.
	mu     sync.Mutex
	editor panel.Editor

	quitOnce sync.Once
	done     chan struct{}
}

// New builds the overlay window and its components. The window starts
// hidden; call Start to attach the global hotkeys.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("daemon: config is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is required")
	}
	cfg := opts.Config
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Bounds == nil {
		opts.Bounds = bounds.NewMemoryStore()
	}
	if opts.Settings == nil {
		opts.Settings = settings.NewMemoryStore()
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.LogLevel == nil {
		opts.LogLevel = new(slog.LevelVar)
		opts.LogLevel.Set(cfg.SlogLevel())
	}

	a := &App{
		backend:   opts.Backend,
		boundsSt:  opts.Bounds,
		settingSt: opts.Settings,
		entry:     opts.Autostart,
		activity:  opts.Activity,
		logger:    opts.Logger,
		level:     opts.LogLevel,
		load:      opts.LoadConfig,
		cfg:       cfg,
		done:      make(chan struct{}),
	}

	tr := opts.Translator
	if tr == nil {
		built, err := translatorFor(cfg, opts.Logger)
		if err != nil {
			return nil, err
		}
		tr = built
	}
	a.translator = &swappableTranslator{t: tr}

	surface, err := opts.Backend.NewSurface(platform.SurfaceOptions{
		Title: WindowTitle,
		Font:  cfg.Window.Font,
		Handlers: platform.Handlers{
			OnBlur:     a.onBlur,
			OnClose:    a.onClose,
			OnGeometry: a.onGeometry,
			OnKey:      a.onKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}
	a.surface = surface

	a.controller = overlay.NewController(overlay.Options{
		Window:            surface,
		Store:             opts.Bounds,
		Clock:             opts.Clock,
		Logger:            opts.Logger.With("component", "overlay"),
		AnimationDuration: cfg.AnimationDuration(),
		FrameInterval:     cfg.FrameInterval(),
	})
	a.controller.Subscribe(a.onOverlayEvent)

	dir, err := translate.ParseDirection(cfg.Translation.DefaultDirection)
	if err != nil {
		dir = translate.GermanToEnglish
	}
	a.coord = coordinator.New(coordinator.Options{
		Translator: a.translator,
		Clock:      opts.Clock,
		Logger:     opts.Logger.With("component", "coordinator"),
		Debounce:   cfg.Debounce(),
		Direction:  dir,
		OnDisplay:  func(coordinator.Display) { a.render() },
		OnLoading:  func(bool) { a.render() },
		OnInput:    a.onInput,
		OnOutcome:  a.onOutcome,
	})

	copier := opts.Copier
	if copier == nil {
		copier = capture.CommandCopier{Argv: cfg.Capture.CopyCommand}
	}
	a.capture = capture.New(capture.Options{
		Clipboard:        opts.Clipboard,
		Copier:           copier,
		Clock:            opts.Clock,
		Logger:           opts.Logger.With("component", "capture"),
		Show:             a.controller.Show,
		Inject:           a.inject,
		PollInterval:     cfg.CapturePollInterval(),
		MaxAttempts:      cfg.Capture.MaxAttempts,
		RestoreClipboard: cfg.Capture.RestoreClipboard,
	})

	src, err := opts.Backend.HotkeySource(platform.HotkeyOptions{
		Source:       cfg.Hotkeys.Source,
		GrabSequence: a.grabSequence(),
		PollInterval: cfg.HotkeyPollInterval(),
		Logger:       opts.Logger.With("component", "hotkeys"),
	})
	if err != nil {
		opts.Logger.Warn("global hotkeys unavailable", "error", err)
	}
	a.dispatcher = hotkeys.NewDispatcher(src, a, opts.Logger.With("component", "hotkeys"))

	a.render()
	return a, nil
}

// grabSequence picks the chord the grab source binds: the settings hotkey
// when it converts, the configured grab_sequence otherwise.
func (a *App) grabSequence() string {
	cfg := a.Config()
	if cfg.Hotkeys.Source != platform.SourceGrab {
		return cfg.Hotkeys.GrabSequence
	}
	seq, err := hotkeys.GrabSequence(a.settingSt.Get().Hotkey)
	if err != nil {
		a.logger.Warn("settings hotkey not usable for grab, using config grab_sequence",
			"error", err, "grab_sequence", cfg.Hotkeys.GrabSequence)
		return cfg.Hotkeys.GrabSequence
	}
	return seq
}

func translatorFor(cfg *config.Config, logger *slog.Logger) (translate.Translator, error) {
	return translate.New(translate.Options{
		Provider:      cfg.Translation.Provider,
		Endpoint:      cfg.Translation.Endpoint,
		Timeout:       cfg.TranslationTimeout(),
		CacheSize:     cfg.Translation.CacheSize,
		OpenAIKey:     cfg.OpenAIKey(),
		OpenAIModel:   cfg.Translation.OpenAI.Model,
		OpenAIBaseURL: cfg.Translation.OpenAI.BaseURL,
		Logger:        logger.With("component", "translate"),
	})
}

// Start attaches the global hotkeys. A failure leaves the overlay usable
// through IPC and is only logged.
func (a *App) Start() {
	if err := a.dispatcher.Start(); err != nil {
		a.logger.Warn("failed to start hotkey dispatcher", "error", err)
	}
	a.syncAutostart()
}

// Done is closed once Quit has finished.
func (a *App) Done() <-chan struct{} { return a.done }

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	return a.cfg
}

// Visible reports whether the overlay is shown.
func (a *App) Visible() bool { return a.controller.Visible() }

// Show maps and focuses the overlay.
func (a *App) Show() { a.controller.Show() }

// Hide unmaps the overlay.
func (a *App) Hide() { a.controller.Hide() }

// Toggle flips visibility.
func (a *App) Toggle() { a.controller.Toggle() }

// Capture copies the current selection into the overlay.
func (a *App) Capture() {
	a.log(activity.ActionCapture, nil)
	a.capture.Trigger()
}

// SetMode switches the overlay between translation and settings.
func (a *App) SetMode(mode bounds.Mode) { a.controller.SetMode(mode) }

// Swap flips the translation direction.
func (a *App) Swap() translate.Direction {
	dir := a.coord.Swap()
	a.log(activity.ActionSwap, map[string]any{"direction": string(dir)})
	a.render()
	return dir
}

// Settings returns the current preferences.
func (a *App) Settings() settings.AppSettings { return a.settingSt.Get() }

// ApplySettings stores next and applies its side effects. Persistence
// failures are logged and the in-memory value is kept.
func (a *App) ApplySettings(next settings.AppSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	prev := a.settingSt.Get()
	if err := a.settingSt.Set(next); err != nil {
		a.logger.Warn("failed to persist settings", "error", err)
	}
	if prev.StartOnStartup != next.StartOnStartup {
		a.syncAutostart()
	}
	if prev.Hotkey != next.Hotkey {
		a.logger.Info("hotkey saved, restart the daemon to rebind it", "hotkey", next.Hotkey)
	}
	a.log(activity.ActionSettings, map[string]any{
		"spellcheck":     next.Spellcheck,
		"startOnStartup": next.StartOnStartup,
		"theme":          string(next.Theme),
	})
	a.render()
	return nil
}

// SetStartOnLogin toggles the startOnStartup setting.
func (a *App) SetStartOnLogin(enabled bool) error {
	next := a.settingSt.Get()
	next.StartOnStartup = enabled
	return a.ApplySettings(next)
}

// TranslateText runs a one-off translation outside the overlay's input.
func (a *App) TranslateText(ctx context.Context, text string, dir translate.Direction) (ipc.TranslateData, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ipc.TranslateData{}, translate.ErrEmptyText
	}
	result, ok, err := a.translator.Translate(ctx, text, dir)
	if err != nil {
		return ipc.TranslateData{}, err
	}
	a.log(activity.ActionTranslate, map[string]any{
		"source":    "ipc",
		"direction": string(dir),
		"text":      a.activity.Preview(text),
		"ok":        ok,
	})
	return ipc.TranslateData{Text: text, Direction: string(dir), Result: result, OK: ok}, nil
}

// Status reports the overlay and translation state.
func (a *App) Status() ipc.StatusData {
	ov := a.controller.Status()
	st := a.coord.State()
	return ipc.StatusData{
		Visible:   ov.Visible,
		Mode:      string(ov.Mode),
		Animating: ov.Animating,
		Direction: string(st.Direction),
		Input:     st.Input,
		Output:    st.Display.Text,
		Loading:   st.Loading,
		Provider:  a.Config().Translation.Provider,
	}
}

// Reload rereads the YAML config and applies the log level and the
// translation provider. Window, capture and hotkey settings take effect on
// the next start.
func (a *App) Reload() error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	tr, err := translatorFor(cfg, a.logger)
	if err != nil {
		return err
	}
	a.translator.set(tr)
	a.level.Set(cfg.SlogLevel())

	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()

	a.logger.Info("configuration reloaded", "provider", cfg.Translation.Provider, "log_level", cfg.LogLevel)
	return nil
}

// Quit hides the overlay, persists its bounds, stops the hotkeys and ends
// the event loop. Only the first call has an effect.
func (a *App) Quit() {
	a.quitOnce.Do(func() {
		a.logger.Info("shutting down overlay")
		a.capture.Cancel()
		a.capture.Wait()
		if err := a.dispatcher.Stop(); err != nil {
			a.logger.Warn("failed to stop hotkey dispatcher", "error", err)
		}
		a.controller.Hide()
		a.controller.SaveBounds()
		a.coord.Close()
		a.backend.Quit()
		close(a.done)
	})
}

// Close releases the window. Call it after the event loop has returned.
func (a *App) Close() {
	a.surface.Destroy()
	if err := a.activity.Close(); err != nil {
		a.logger.Warn("failed to close activity log", "error", err)
	}
}

// IPCHandler adapts the app to the IPC server.
func (a *App) IPCHandler() ipc.Handler { return ipcHandler{a} }

func (a *App) onBlur()                          { a.controller.OnBlur() }
func (a *App) onClose()                         { a.controller.OnClose() }
func (a *App) onGeometry(b bounds.WindowBounds) { a.controller.OnGeometryChanged(b) }

func (a *App) onOverlayEvent(ev overlay.Event) {
	switch ev.Kind {
	case overlay.EventShown:
		a.log(activity.ActionShow, map[string]any{"mode": string(ev.Mode)})
	case overlay.EventHidden:
		a.log(activity.ActionHide, map[string]any{"mode": string(ev.Mode)})
	case overlay.EventModeChanged:
		a.log(activity.ActionMode, map[string]any{"mode": string(ev.Mode)})
	}
	a.render()
}

// onInput mirrors text set by the coordinator into the editor.
func (a *App) onInput(text string) {
	a.mu.Lock()
	a.editor.SetInput(text)
	a.mu.Unlock()
	a.render()
}

func (a *App) inject(text string) {
	if a.controller.Mode() != bounds.ModeTranslation {
		a.controller.SetMode(bounds.ModeTranslation)
	}
	a.coord.SetInput(text)
}

func (a *App) onOutcome(o coordinator.Outcome) {
	a.log(activity.ActionTranslate, map[string]any{
		"direction": string(o.Direction),
		"text":      a.activity.Preview(o.Input),
		"display":   o.Display.Kind.String(),
		"elapsed":   o.Elapsed.Round(time.Millisecond).String(),
	})
}

func (a *App) log(action activity.Action, details map[string]any) {
	a.activity.Log(action, details)
}

type ipcHandler struct{ a *App }

func (h ipcHandler) Show() error    { h.a.Show(); return nil }
func (h ipcHandler) Hide() error    { h.a.Hide(); return nil }
func (h ipcHandler) Toggle() error  { h.a.Toggle(); return nil }
func (h ipcHandler) Capture() error { h.a.Capture(); return nil }

func (h ipcHandler) SetMode(mode bounds.Mode) error {
	h.a.SetMode(mode)
	return nil
}

func (h ipcHandler) Swap() (translate.Direction, error) { return h.a.Swap(), nil }

func (h ipcHandler) Settings() settings.AppSettings { return h.a.Settings() }

func (h ipcHandler) SetSettings(s settings.AppSettings) error { return h.a.ApplySettings(s) }

func (h ipcHandler) SetStartOnLogin(enabled bool) error { return h.a.SetStartOnLogin(enabled) }

func (h ipcHandler) Translate(ctx context.Context, text string, dir translate.Direction) (ipc.TranslateData, error) {
	return h.a.TranslateText(ctx, text, dir)
}

func (h ipcHandler) Status() ipc.StatusData { return h.a.Status() }
func (h ipcHandler) Reload() error          { return h.a.Reload() }
func (h ipcHandler) Quit()                  { h.a.Quit() }

// swappableTranslator lets Reload replace the provider under a running
// coordinator.
type swappableTranslator struct {
	mu sync.RWMutex
	t  translate.Translator
}

func (s *swappableTranslator) Translate(ctx context.Context, text string, dir translate.Direction) (string, bool, error) {
	s.mu.RLock()
	t := s.t
	s.mu.RUnlock()
	return t.Translate(ctx, text, dir)
}

func (s *swappableTranslator) set(t translate.Translator) {
	s.mu.Lock()
	s.t = t
	s.mu.Unlock()
}
