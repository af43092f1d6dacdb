package hotkeys

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeActions struct {
	visible  bool
	toggles  int
	hides    int
	captures int
}

func (a *fakeActions) Visible() bool { return a.visible }
func (a *fakeActions) Toggle()       { a.toggles++; a.visible = !a.visible }
func (a *fakeActions) Hide()         { a.hides++; a.visible = false }
func (a *fakeActions) Capture()      { a.captures++; a.visible = true }

type fakeSource struct {
	handle  func(KeyEvent)
	starts  int
	stops   int
	failErr error
}

func (s *fakeSource) Start(handle func(KeyEvent)) error {
	s.starts++
	if s.failErr != nil {
		return s.failErr
	}
	s.handle = handle
	return nil
}

func (s *fakeSource) Stop() error {
	s.stops++
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func press(d *Dispatcher, keys ...Key) {
	for _, k := range keys {
		d.Handle(KeyEvent{Key: k, Down: true})
	}
	for i := len(keys) - 1; i >= 0; i-- {
		d.Handle(KeyEvent{Key: keys[i], Down: false})
	}
}

func TestChords(t *testing.T) {
	tests := []struct {
		name         string
		visible      bool
		keys         []Key
		wantCaptures int
		wantToggles  int
		wantHides    int
	}{
		{"ctrl-grave hidden captures", false, []Key{KeyControlL, KeyGrave}, 1, 0, 0},
		{"right ctrl counts", false, []Key{KeyControlR, KeyGrave}, 1, 0, 0},
		{"ctrl-grave visible toggles", true, []Key{KeyControlL, KeyGrave}, 0, 1, 0},
		{"alt-tab visible hides", true, []Key{KeyAltL, KeyTab}, 0, 0, 1},
		{"right alt counts", true, []Key{KeyAltR, KeyTab}, 0, 0, 1},
		{"alt-tab hidden ignored", false, []Key{KeyAltL, KeyTab}, 0, 0, 0},
		{"grave alone ignored", false, []Key{KeyGrave}, 0, 0, 0},
		{"tab with ctrl ignored", true, []Key{KeyControlL, KeyTab}, 0, 0, 0},
		{"grave with alt ignored", false, []Key{KeyAltL, KeyGrave}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeActions{visible: tt.visible}
			d := NewDispatcher(nil, a, quiet())
			press(d, tt.keys...)
			if a.captures != tt.wantCaptures || a.toggles != tt.wantToggles || a.hides != tt.wantHides {
				t.Fatalf("captures=%d toggles=%d hides=%d, want %d %d %d",
					a.captures, a.toggles, a.hides, tt.wantCaptures, tt.wantToggles, tt.wantHides)
			}
		})
	}
}

func TestModifierReleaseClearsState(t *testing.T) {
	a := &fakeActions{}
	d := NewDispatcher(nil, a, quiet())

	d.Handle(KeyEvent{Key: KeyControlL, Down: true})
	if !d.Modifiers().Ctrl {
		t.Fatal("ctrl not tracked")
	}
	d.Handle(KeyEvent{Key: KeyControlL, Down: false})
	d.Handle(KeyEvent{Key: KeyGrave, Down: true})
	if a.captures != 0 {
		t.Fatal("grave after ctrl release triggered capture")
	}

	d.Handle(KeyEvent{Key: KeyShiftR, Down: true})
	if !d.Modifiers().Shift {
		t.Fatal("shift not tracked")
	}
}

func TestRepeatedChordWhileHeld(t *testing.T) {
	a := &fakeActions{}
	d := NewDispatcher(nil, a, quiet())

	d.Handle(KeyEvent{Key: KeyControlL, Down: true})
	d.Handle(KeyEvent{Key: KeyGrave, Down: true})
	d.Handle(KeyEvent{Key: KeyGrave, Down: false})
	d.Handle(KeyEvent{Key: KeyGrave, Down: true})

	if a.captures != 1 || a.toggles != 1 {
		t.Fatalf("captures=%d toggles=%d, want 1 1", a.captures, a.toggles)
	}
}

func TestStartStopOnce(t *testing.T) {
	src := &fakeSource{}
	a := &fakeActions{}
	d := NewDispatcher(src, a, quiet())

	for i := 0; i < 3; i++ {
		if err := d.Start(); err != nil {
			t.Fatalf("Start() error: %v", err)
		}
	}
	if src.starts != 1 {
		t.Fatalf("source starts = %d, want 1", src.starts)
	}

	src.handle(KeyEvent{Key: KeyControlL, Down: true})
	src.handle(KeyEvent{Key: KeyGrave, Down: true})
	if a.captures != 1 {
		t.Fatal("events from source not dispatched")
	}

	d.Stop()
	d.Stop()
	if src.stops != 1 {
		t.Fatalf("source stops = %d, want 1", src.stops)
	}
}

func TestStartFailureIsSticky(t *testing.T) {
	src := &fakeSource{failErr: errors.New("no display")}
	d := NewDispatcher(src, &fakeActions{}, quiet())
	if err := d.Start(); err == nil {
		t.Fatal("Start() error = nil")
	}
	if err := d.Start(); err == nil {
		t.Fatal("second Start() error = nil")
	}
	if src.starts != 1 {
		t.Fatalf("source starts = %d, want 1", src.starts)
	}
}
