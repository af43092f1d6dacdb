package daemon

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/quickgerman/internal/autostart"
	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/clock"
	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/hotkeys"
	"github.com/1broseidon/quickgerman/internal/panel"
	"github.com/1broseidon/quickgerman/internal/platform"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/translate"
)

type fakeSurface struct {
	mu       sync.Mutex
	mapped   bool
	bounds   bounds.WindowBounds
	lines    []panel.Line
	theme    settings.Theme
	renders  int
	destroys int
}

func (s *fakeSurface) Map() error   { s.mu.Lock(); s.mapped = true; s.mu.Unlock(); return nil }
func (s *fakeSurface) Unmap() error { s.mu.Lock(); s.mapped = false; s.mu.Unlock(); return nil }
func (s *fakeSurface) Focus() error { return nil }

func (s *fakeSurface) SetAlwaysOnTop(bool) error   { return nil }
func (s *fakeSurface) SetAllWorkspaces(bool) error { return nil }
func (s *fakeSurface) SetMinSize(bounds.Size) error {
	return nil
}
func (s *fakeSurface) YieldFocus() error { return nil }

func (s *fakeSurface) Bounds() (bounds.WindowBounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds, nil
}

func (s *fakeSurface) SetBounds(b bounds.WindowBounds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = b
	return nil
}

func (s *fakeSurface) Render(lines []panel.Line, theme settings.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]panel.Line(nil), lines...)
	s.theme = theme
	s.renders++
}

func (s *fakeSurface) TextGrid() (int, int) { return 60, 20 }

func (s *fakeSurface) Destroy() {
	s.mu.Lock()
	s.destroys++
	s.mu.Unlock()
}

func (s *fakeSurface) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, l := range s.lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *fakeSurface) isMapped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapped
}

type fakeSource struct {
	mu     sync.Mutex
	handle func(hotkeys.KeyEvent)
	stops  int
}

func (s *fakeSource) Start(handle func(hotkeys.KeyEvent)) error {
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()
	return nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
	return nil
}

type fakeBackend struct {
	surface    *fakeSurface
	source     *fakeSource
	handlers   platform.Handlers
	hotkeyOpts platform.HotkeyOptions

	mu     sync.Mutex
	quits  int
	closes int
	quitCh chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		surface: &fakeSurface{},
		source:  &fakeSource{},
		quitCh:  make(chan struct{}),
	}
}

func (b *fakeBackend) NewSurface(opts platform.SurfaceOptions) (platform.Surface, error) {
	b.handlers = opts.Handlers
	return b.surface, nil
}

func (b *fakeBackend) HotkeySource(opts platform.HotkeyOptions) (hotkeys.Source, error) {
	b.hotkeyOpts = opts
	return b.source, nil
}

func (b *fakeBackend) Run() { <-b.quitCh }

func (b *fakeBackend) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quits++
	if b.quits == 1 {
		close(b.quitCh)
	}
}

func (b *fakeBackend) Close() {
	b.mu.Lock()
	b.closes++
	b.mu.Unlock()
}

type fakeTranslator struct {
	mu    sync.Mutex
	dict  map[string]string
	calls []string
}

func (f *fakeTranslator) Translate(_ context.Context, text string, dir translate.Direction) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(dir)+":"+text)
	result, ok := f.dict[text]
	return result, ok, nil
}

func (f *fakeTranslator) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *fakeClipboard) ReadAll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

type fakeCopier struct {
	clip *fakeClipboard
	text string
	err  error
}

func (c fakeCopier) SimulateCopy(context.Context) error {
	if c.err != nil {
		return c.err
	}
	return c.clip.WriteAll(c.text)
}

type testApp struct {
	*App
	backend *fakeBackend
	clock   *clock.Fake
	tr      *fakeTranslator
	clip    *fakeClipboard
}

func newTestApp(t *testing.T, mutate func(*Options)) *testApp {
	t.Helper()
	b := newFakeBackend()
	clk := clock.NewFake()
	tr := &fakeTranslator{dict: map[string]string{
		"hallo":     "hello",
		"hello":     "hallo",
		"Guten Tag": "Good day",
	}}
	clip := &fakeClipboard{}
	opts := Options{
		Config:     config.DefaultConfig(),
		Backend:    b,
		Translator: tr,
		Clipboard:  clip,
		Copier:     fakeCopier{clip: clip, text: "Guten Tag"},
		Clock:      clk,
		Logger:     slog.New(slog.DiscardHandler),
	}
	if mutate != nil {
		mutate(&opts)
	}
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	app.Start()
	t.Cleanup(app.Quit)
	return &testApp{App: app, backend: b, clock: clk, tr: tr, clip: clip}
}

func (a *testApp) typeText(s string) {
	for _, r := range s {
		a.backend.handlers.OnKey(panel.KeyInput{Name: string(r)})
	}
}

func (a *testApp) settle() {
	a.clock.Advance(time.Second)
	a.capture.Wait()
	a.coord.Wait()
}

func TestNewRequiresConfigAndBackend(t *testing.T) {
	if _, err := New(Options{Backend: newFakeBackend()}); err == nil {
		t.Fatalf("New() without config should fail")
	}
	if _, err := New(Options{Config: config.DefaultConfig()}); err == nil {
		t.Fatalf("New() without backend should fail")
	}
}

func TestTypingTranslatesAfterDebounce(t *testing.T) {
	a := newTestApp(t, nil)
	a.Show()
	a.typeText("hallo")

	if got := a.tr.lastCall(); got != "" {
		t.Fatalf("translated before debounce: %q", got)
	}
	if !strings.Contains(a.backend.surface.text(), "hallo") {
		t.Fatalf("input not rendered:\n%s", a.backend.surface.text())
	}

	a.settle()
	if got := a.tr.lastCall(); got != "de-en:hallo" {
		t.Fatalf("last translation = %q, want de-en:hallo", got)
	}
	if !strings.Contains(a.backend.surface.text(), "hello") {
		t.Fatalf("result not rendered:\n%s", a.backend.surface.text())
	}
	if st := a.Status(); st.Output != "hello" || st.Input != "hallo" {
		t.Fatalf("Status() = %+v", st)
	}
}

func TestSwapPromotesResult(t *testing.T) {
	a := newTestApp(t, nil)
	a.Show()
	a.typeText("hallo")
	a.settle()

	a.backend.handlers.OnKey(panel.KeyInput{Name: "s", Ctrl: true})
	a.settle()

	if got := a.tr.lastCall(); got != "en-de:hello" {
		t.Fatalf("last translation = %q, want en-de:hello", got)
	}
	a.mu.Lock()
	input := a.editor.Input()
	a.mu.Unlock()
	if input != "hello" {
		t.Fatalf("editor input = %q, want hello", input)
	}
}

func TestEscapeAndBlurHide(t *testing.T) {
	a := newTestApp(t, nil)

	a.Show()
	a.backend.handlers.OnKey(panel.KeyInput{Name: "Escape"})
	if a.Visible() || a.backend.surface.isMapped() {
		t.Fatalf("Escape did not hide the overlay")
	}

	a.Show()
	a.backend.handlers.OnBlur()
	if a.Visible() {
		t.Fatalf("blur did not hide the overlay")
	}

	a.Show()
	a.backend.handlers.OnClose()
	if a.Visible() {
		t.Fatalf("close request did not hide the overlay")
	}
	if a.backend.surface.destroys != 0 {
		t.Fatalf("close request destroyed the window")
	}
}

func TestCaptureShowsAndInjects(t *testing.T) {
	a := newTestApp(t, nil)
	a.Capture()
	a.settle()

	if !a.Visible() {
		t.Fatalf("capture did not show the overlay")
	}
	st := a.Status()
	if st.Input != "Guten Tag" || st.Output != "Good day" {
		t.Fatalf("Status() after capture = %+v", st)
	}
	a.mu.Lock()
	input := a.editor.Input()
	a.mu.Unlock()
	if input != "Guten Tag" {
		t.Fatalf("editor input = %q", input)
	}
}

func TestCaptureWithoutSelectionStillShows(t *testing.T) {
	a := newTestApp(t, func(o *Options) {
		o.Copier = fakeCopier{err: errors.New("xdotool missing")}
	})
	a.Capture()
	a.settle()

	if !a.Visible() {
		t.Fatalf("overlay hidden after failed copy")
	}
	if st := a.Status(); st.Input != "" {
		t.Fatalf("input = %q, want empty", st.Input)
	}
}

func TestSettingsModeKeys(t *testing.T) {
	dir := t.TempDir()
	entry := autostart.Entry{Path: filepath.Join(dir, "autostart", "quickgerman.desktop"), Exec: "quickgerman daemon"}
	store, err := settings.Load(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("settings.Load() error = %v", err)
	}
	a := newTestApp(t, func(o *Options) {
		o.Settings = store
		o.Autostart = &entry
	})
	a.Show()

	a.backend.handlers.OnKey(panel.KeyInput{Name: "F2"})
	a.settle()
	if a.controller.Mode() != bounds.ModeSettings {
		t.Fatalf("F2 did not switch to settings mode")
	}
	if !strings.Contains(a.backend.surface.text(), "Settings") {
		t.Fatalf("settings panel not rendered:\n%s", a.backend.surface.text())
	}

	a.backend.handlers.OnKey(panel.KeyInput{Name: "space"})
	if a.Settings().Spellcheck {
		t.Fatalf("space did not toggle spellcheck")
	}

	a.backend.handlers.OnKey(panel.KeyInput{Name: "Down"})
	a.backend.handlers.OnKey(panel.KeyInput{Name: "Return"})
	if !a.Settings().StartOnStartup {
		t.Fatalf("enter did not toggle start on login")
	}
	if !entry.Enabled() {
		t.Fatalf("autostart entry not written")
	}

	reloaded, err := settings.Load(store.Path())
	if err != nil {
		t.Fatalf("reload settings error = %v", err)
	}
	if got := reloaded.Get(); got.Spellcheck || !got.StartOnStartup {
		t.Fatalf("persisted settings = %+v", got)
	}

	if err := a.SetStartOnLogin(false); err != nil {
		t.Fatalf("SetStartOnLogin(false) error = %v", err)
	}
	if entry.Enabled() {
		t.Fatalf("autostart entry not removed")
	}
}

func TestApplySettingsRejectsInvalid(t *testing.T) {
	a := newTestApp(t, nil)
	bad := a.Settings()
	bad.Theme = "neon"
	if err := a.ApplySettings(bad); err == nil {
		t.Fatalf("ApplySettings() accepted invalid theme")
	}
	if a.Settings().Theme != settings.ThemeSystem {
		t.Fatalf("invalid settings were stored")
	}
}

func TestThemeReachesSurface(t *testing.T) {
	a := newTestApp(t, nil)
	next := a.Settings()
	next.Theme = settings.ThemeLight
	if err := a.ApplySettings(next); err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}
	a.backend.surface.mu.Lock()
	theme := a.backend.surface.theme
	a.backend.surface.mu.Unlock()
	if theme != settings.ThemeLight {
		t.Fatalf("surface theme = %q, want light", theme)
	}
}

func TestTranslateText(t *testing.T) {
	a := newTestApp(t, nil)
	got, err := a.TranslateText(context.Background(), "  hallo ", translate.GermanToEnglish)
	if err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}
	if got.Result != "hello" || !got.OK || got.Text != "hallo" {
		t.Fatalf("TranslateText() = %+v", got)
	}
	if _, err := a.TranslateText(context.Background(), "   ", translate.GermanToEnglish); !errors.Is(err, translate.ErrEmptyText) {
		t.Fatalf("TranslateText(blank) error = %v, want ErrEmptyText", err)
	}
	if st := a.Status(); st.Input != "" {
		t.Fatalf("one-off translation changed overlay input: %+v", st)
	}
}

func TestReloadAppliesLogLevel(t *testing.T) {
	reloaded := config.DefaultConfig()
	reloaded.LogLevel = "debug"
	level := new(slog.LevelVar)
	a := newTestApp(t, func(o *Options) {
		o.LogLevel = level
		o.LoadConfig = func() (*config.Config, error) { return reloaded, nil }
	})
	if err := a.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if level.Level() != slog.LevelDebug {
		t.Fatalf("log level = %v, want debug", level.Level())
	}
	if a.Config() != reloaded {
		t.Fatalf("Config() not replaced")
	}
}

func TestReloadKeepsConfigOnError(t *testing.T) {
	a := newTestApp(t, func(o *Options) {
		o.LoadConfig = func() (*config.Config, error) { return nil, errors.New("bad yaml") }
	})
	before := a.Config()
	if err := a.Reload(); err == nil {
		t.Fatalf("Reload() error = nil")
	}
	if a.Config() != before {
		t.Fatalf("config replaced after failed reload")
	}
}

func TestQuitOnce(t *testing.T) {
	a := newTestApp(t, nil)
	a.Show()
	a.Quit()
	a.Quit()

	select {
	case <-a.Done():
	default:
		t.Fatalf("Done() not closed after Quit")
	}
	if a.Visible() {
		t.Fatalf("overlay visible after Quit")
	}
	if a.backend.quits != 1 {
		t.Fatalf("backend quit %d times, want 1", a.backend.quits)
	}
	if a.backend.source.stops != 1 {
		t.Fatalf("key source stopped %d times, want 1", a.backend.source.stops)
	}
}

func TestCtrlQQuits(t *testing.T) {
	a := newTestApp(t, nil)
	a.backend.handlers.OnKey(panel.KeyInput{Name: "q", Ctrl: true})
	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("Ctrl+Q did not quit")
	}
}

func TestReconcilerRepairsAutostart(t *testing.T) {
	dir := t.TempDir()
	entry := autostart.Entry{Path: filepath.Join(dir, "quickgerman.desktop"), Exec: "quickgerman daemon"}
	store := settings.NewMemoryStore()
	on := store.Get()
	on.StartOnStartup = true
	if err := store.Set(on); err != nil {
		t.Fatalf("store.Set() error = %v", err)
	}
	a := newTestApp(t, func(o *Options) {
		o.Settings = store
	})
	a.entry = &entry

	r := NewReconciler(ReconcilerConfig{Logger: slog.New(slog.DiscardHandler)}, a.App)
	r.ReconcileNow()
	if !entry.Enabled() {
		t.Fatalf("reconciler did not write the autostart entry")
	}
}

func TestReconcilerFlushesVisibleBounds(t *testing.T) {
	store := bounds.NewMemoryStore()
	a := newTestApp(t, func(o *Options) { o.Bounds = store })
	a.Show()

	moved := store.Get(bounds.ModeTranslation).At(120, 80)
	if err := a.backend.surface.SetBounds(moved); err != nil {
		t.Fatalf("SetBounds() error = %v", err)
	}
	NewReconciler(ReconcilerConfig{Logger: slog.New(slog.DiscardHandler)}, a.App).ReconcileNow()
	if got := store.Get(bounds.ModeTranslation); !got.Equal(moved) {
		t.Fatalf("stored bounds = %s, want %s", got, moved)
	}
}

func TestGrabSourceBindsSettingsHotkey(t *testing.T) {
	tests := []struct {
		name   string
		source string
		hotkey string
		want   string
	}{
		{"grab uses settings hotkey", platform.SourceGrab, "Ctrl+Shift+T", "Control-Shift-t"},
		{"grab falls back to config", platform.SourceGrab, "Hyper+x", "Control-grave"},
		{"keymap keeps config sequence", platform.SourceKeymap, "Ctrl+Shift+T", "Control-grave"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := settings.NewMemoryStore()
			st := store.Get()
			st.Hotkey = tt.hotkey
			if err := store.Set(st); err != nil {
				t.Fatal(err)
			}
			app := newTestApp(t, func(o *Options) {
				cfg := config.DefaultConfig()
				cfg.Hotkeys.Source = tt.source
				o.Config = cfg
				o.Settings = store
			})
			got := app.backend.hotkeyOpts
			if got.Source != tt.source || got.GrabSequence != tt.want {
				t.Fatalf("HotkeyOptions = %+v, want source %q sequence %q", got, tt.source, tt.want)
			}
		})
	}
}
