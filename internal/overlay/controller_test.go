package overlay

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/clock"
)

type fakeWindow struct {
	mu      sync.Mutex
	mapped  bool
	onTop   bool
	sticky  bool
	current bounds.WindowBounds
	minSize bounds.Size
	calls   []string
	frames  []bounds.WindowBounds
}

func (w *fakeWindow) record(call string) {
	w.calls = append(w.calls, call)
}

func (w *fakeWindow) Map() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapped = true
	w.record("map")
	return nil
}

func (w *fakeWindow) Unmap() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mapped = false
	w.record("unmap")
	return nil
}

func (w *fakeWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("focus")
	return nil
}

func (w *fakeWindow) SetAlwaysOnTop(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTop = on
	w.record("above")
	return nil
}

func (w *fakeWindow) SetAllWorkspaces(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sticky = on
	w.record("sticky")
	return nil
}

func (w *fakeWindow) Bounds() (bounds.WindowBounds, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, nil
}

func (w *fakeWindow) SetBounds(b bounds.WindowBounds) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !b.Positioned() {
		b = b.At(0, 0)
	}
	w.current = b
	w.frames = append(w.frames, b)
	return nil
}

func (w *fakeWindow) SetMinSize(s bounds.Size) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.minSize = s
	return nil
}

func (w *fakeWindow) YieldFocus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("yield")
	return nil
}

func (w *fakeWindow) callCount(name string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c == name {
			n++
		}
	}
	return n
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) listen(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func newTestController(t *testing.T) (*Controller, *fakeWindow, *clock.Fake, *bounds.Store, *eventLog) {
	t.Helper()
	store, err := bounds.Load(filepath.Join(t.TempDir(), "window-state.json"))
	if err != nil {
		t.Fatal(err)
	}
	win := &fakeWindow{}
	clk := clock.NewFake()
	c := NewController(Options{
		Window: win,
		Store:  store,
		Clock:  clk,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	log := &eventLog{}
	c.Subscribe(log.listen)
	return c, win, clk, store, log
}

func TestNewControllerAppliesTranslationBounds(t *testing.T) {
	_, win, _, _, _ := newTestController(t)
	if win.current.Width != 800 || win.current.Height != 400 {
		t.Fatalf("initial bounds = %s, want 800x400", win.current)
	}
	if win.minSize != bounds.MinSize(bounds.ModeTranslation) {
		t.Fatalf("min size = %+v", win.minSize)
	}
}

func TestShowIsIdempotent(t *testing.T) {
	c, win, _, _, log := newTestController(t)

	c.Show()
	c.Show()

	if !c.Visible() || !win.mapped || !win.onTop || !win.sticky {
		t.Fatalf("window state after Show: visible=%v mapped=%v onTop=%v sticky=%v", c.Visible(), win.mapped, win.onTop, win.sticky)
	}
	if got := log.count(EventShown); got != 1 {
		t.Fatalf("shown events = %d, want 1", got)
	}
	if got := win.callCount("map"); got != 1 {
		t.Fatalf("map calls = %d, want 1", got)
	}
	if got := win.callCount("focus"); got != 2 {
		t.Fatalf("focus calls = %d, want 2", got)
	}
}

func TestHideIsIdempotent(t *testing.T) {
	c, win, _, _, log := newTestController(t)

	c.Hide()
	if log.count(EventHidden) != 0 || win.callCount("unmap") != 0 {
		t.Fatal("Hide() on hidden window had effects")
	}

	c.Show()
	c.Hide()
	c.Hide()
	if got := log.count(EventHidden); got != 1 {
		t.Fatalf("hidden events = %d, want 1", got)
	}
	if got := win.callCount("yield"); got != 1 {
		t.Fatalf("yield calls = %d, want 1", got)
	}
	if win.mapped {
		t.Fatal("window still mapped")
	}
}

func TestToggle(t *testing.T) {
	c, _, _, _, _ := newTestController(t)
	c.Toggle()
	if !c.Visible() {
		t.Fatal("Toggle() from hidden did not show")
	}
	c.Toggle()
	if c.Visible() {
		t.Fatal("Toggle() from visible did not hide")
	}
}

func TestHidePersistsBounds(t *testing.T) {
	c, win, _, store, _ := newTestController(t)
	c.Show()
	win.SetBounds(bounds.WindowBounds{Width: 900, Height: 450}.At(15, 25))
	c.Hide()

	got := store.Get(bounds.ModeTranslation)
	if got.Width != 900 || got.Height != 450 || *got.X != 15 || *got.Y != 25 {
		t.Fatalf("persisted = %s", got)
	}
}

func TestSetModeAnimatesToTarget(t *testing.T) {
	c, win, clk, store, log := newTestController(t)
	c.Show()

	c.SetMode(bounds.ModeSettings)
	if c.Mode() != bounds.ModeSettings {
		t.Fatalf("Mode() = %s", c.Mode())
	}
	if win.minSize != bounds.MinSize(bounds.ModeSettings) {
		t.Fatalf("min size not updated: %+v", win.minSize)
	}
	if log.count(EventModeApplied) != 0 {
		t.Fatal("mode applied before animation ran")
	}

	clk.Advance(150 * time.Millisecond)
	mid := win.current
	if mid.Width >= 800 || mid.Width <= 400 || mid.Height <= 400 || mid.Height >= 800 {
		t.Fatalf("mid-animation frame = %s, want strictly between", mid)
	}

	clk.Advance(200 * time.Millisecond)
	if win.current.Width != 400 || win.current.Height != 800 {
		t.Fatalf("final frame = %s, want 400x800", win.current)
	}
	if got := log.count(EventModeApplied); got != 1 {
		t.Fatalf("mode applied events = %d, want 1", got)
	}
	if c.Status().Animating {
		t.Fatal("still animating after completion")
	}

	saved := store.Get(bounds.ModeTranslation)
	if saved.Width != 800 || saved.Height != 400 {
		t.Fatalf("outgoing bounds saved as %s", saved)
	}
}

// lateClock delivers every timer some time after it was due.
type lateClock struct {
	*clock.Fake
	lag time.Duration
}

func (c lateClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	return c.Fake.AfterFunc(d+c.lag, f)
}

func TestAnimationFollowsWallClockWhenFramesRunLate(t *testing.T) {
	store, err := bounds.Load(filepath.Join(t.TempDir(), "window-state.json"))
	if err != nil {
		t.Fatal(err)
	}
	win := &fakeWindow{}
	clk := lateClock{Fake: clock.NewFake(), lag: 10 * time.Millisecond}
	c := NewController(Options{
		Window: win,
		Store:  store,
		Clock:  clk,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	log := &eventLog{}
	c.Subscribe(log.listen)
	c.Show()

	c.SetMode(bounds.ModeSettings)
	clk.Advance(DefaultAnimationDuration + 20*time.Millisecond)

	if c.Status().Animating {
		t.Fatalf("still animating at %s after %s", win.current, DefaultAnimationDuration+20*time.Millisecond)
	}
	if win.current.Width != 400 || win.current.Height != 800 {
		t.Fatalf("final frame = %s, want 400x800", win.current)
	}
	if got := log.count(EventModeApplied); got != 1 {
		t.Fatalf("mode applied events = %d, want 1", got)
	}
}

func TestSetModeSameModeIsNoop(t *testing.T) {
	c, _, clk, _, log := newTestController(t)
	c.SetMode(bounds.ModeTranslation)
	clk.Advance(time.Second)
	if log.count(EventModeChanged) != 0 || log.count(EventModeApplied) != 0 {
		t.Fatal("SetMode(current) emitted events")
	}
}

func TestSetModeEqualSizeCompletesImmediately(t *testing.T) {
	c, _, clk, store, log := newTestController(t)
	if err := store.Set(bounds.ModeSettings, bounds.WindowBounds{Width: 800, Height: 400}); err != nil {
		t.Fatal(err)
	}
	c.SetMode(bounds.ModeSettings)
	if got := log.count(EventModeApplied); got != 1 {
		t.Fatalf("mode applied events = %d, want 1", got)
	}
	clk.Advance(time.Second)
	if got := log.count(EventModeApplied); got != 1 {
		t.Fatalf("mode applied events after advance = %d, want 1", got)
	}
}

func TestSetModeRoundTripWithoutDrift(t *testing.T) {
	c, win, clk, store, _ := newTestController(t)
	c.Show()
	win.SetBounds(bounds.WindowBounds{Width: 777, Height: 333}.At(40, 60))

	for i := 0; i < 3; i++ {
		c.SetMode(bounds.ModeSettings)
		clk.Advance(time.Second)
		c.SetMode(bounds.ModeTranslation)
		clk.Advance(time.Second)
	}

	got := store.Get(bounds.ModeTranslation)
	if got.Width != 777 || got.Height != 333 {
		t.Fatalf("Translation bounds drifted to %s", got)
	}
	if win.current.Width != 777 || win.current.Height != 333 {
		t.Fatalf("window ended at %s", win.current)
	}
	st := store.Get(bounds.ModeSettings)
	if st.Width != 400 || st.Height != 800 {
		t.Fatalf("Settings bounds drifted to %s", st)
	}
}

func TestOverlappingSetModeCancelsAndReplaces(t *testing.T) {
	c, win, clk, store, log := newTestController(t)
	c.Show()

	c.SetMode(bounds.ModeSettings)
	clk.Advance(100 * time.Millisecond)
	c.SetMode(bounds.ModeTranslation)
	clk.Advance(time.Second)

	if win.current.Width != 800 || win.current.Height != 400 {
		t.Fatalf("final frame = %s, want 800x400", win.current)
	}
	if got := log.count(EventModeApplied); got != 1 {
		t.Fatalf("mode applied events = %d, want 1", got)
	}
	st := store.Get(bounds.ModeSettings)
	if st.Width != 400 || st.Height != 800 {
		t.Fatalf("intermediate frame persisted for Settings: %s", st)
	}
	if clk.Pending() != 0 {
		t.Fatalf("pending timers = %d", clk.Pending())
	}
}

func TestHideDuringAnimationSnapsToTarget(t *testing.T) {
	c, win, clk, store, log := newTestController(t)
	c.Show()
	c.SetMode(bounds.ModeSettings)
	clk.Advance(50 * time.Millisecond)
	c.Hide()

	if win.current.Width != 400 || win.current.Height != 800 {
		t.Fatalf("bounds after hide = %s", win.current)
	}
	if got := store.Get(bounds.ModeSettings); got.Width != 400 || got.Height != 800 {
		t.Fatalf("persisted Settings = %s", got)
	}
	clk.Advance(time.Second)
	if got := log.count(EventModeApplied); got != 1 {
		t.Fatalf("mode applied events = %d, want 1", got)
	}
}

func TestGeometryChangesPersistUnlessAnimating(t *testing.T) {
	c, _, clk, store, _ := newTestController(t)
	c.Show()
	c.OnGeometryChanged(bounds.WindowBounds{Width: 640, Height: 320}.At(1, 2))
	if got := store.Get(bounds.ModeTranslation); got.Width != 640 {
		t.Fatalf("resize not persisted: %s", got)
	}

	c.SetMode(bounds.ModeSettings)
	c.OnGeometryChanged(bounds.WindowBounds{Width: 500, Height: 500}.At(1, 2))
	if got := store.Get(bounds.ModeSettings); got.Width == 500 {
		t.Fatal("geometry during animation was persisted")
	}
	clk.Advance(time.Second)
}

func TestOnBlurHidesOnlyWhenVisible(t *testing.T) {
	c, _, _, _, log := newTestController(t)
	c.OnBlur()
	if log.count(EventHidden) != 0 {
		t.Fatal("blur while hidden emitted hidden")
	}
	c.Show()
	c.OnBlur()
	if c.Visible() || log.count(EventHidden) != 1 {
		t.Fatal("blur while visible did not hide")
	}
}

func TestOnCloseHides(t *testing.T) {
	c, _, _, _, _ := newTestController(t)
	c.Show()
	c.OnClose()
	if c.Visible() {
		t.Fatal("close did not hide")
	}
}
