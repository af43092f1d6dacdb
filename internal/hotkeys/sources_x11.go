package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// DefaultToggleSequence is the grab source's chord in xgbutil notation.
const DefaultToggleSequence = "Control-grave"

// DefaultPollInterval is how often the keymap source samples the keyboard.
const DefaultPollInterval = 10 * time.Millisecond

var ignoreModsOnce sync.Once

// GrabSource grabs the toggle chord on the root window and reports it as
// the raw press/release sequence the dispatcher expects. Alt+Tab is left to
// the window manager; the overlay hides on the resulting focus loss.
type GrabSource struct {
	xu       *xgbutil.XUtil
	root     xproto.Window
	sequence string
}

// NewGrabSource returns a grab-based source for sequence, e.g.
// "Control-grave".
func NewGrabSource(xu *xgbutil.XUtil, root xproto.Window, sequence string) *GrabSource {
	if sequence == "" {
		sequence = DefaultToggleSequence
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &GrabSource{xu: xu, root: root, sequence: sequence}
}

func (s *GrabSource) Start(handle func(KeyEvent)) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		handle(KeyEvent{Key: KeyControlL, Down: true})
		handle(KeyEvent{Key: KeyGrave, Down: true})
		handle(KeyEvent{Key: KeyGrave, Down: false})
		handle(KeyEvent{Key: KeyControlL, Down: false})
	}).Connect(s.xu, s.root, s.sequence, true)
	if err != nil {
		return fmt.Errorf("failed to grab %q: %w", s.sequence, err)
	}
	return nil
}

func (s *GrabSource) Stop() error {
	keybind.Detach(s.xu, s.root)
	return nil
}

// KeymapSource observes the keyboard without grabbing it by sampling the
// server's key state and emitting a KeyEvent for every tracked key whose
// state changed since the last sample.
type KeymapSource struct {
	xu       *xgbutil.XUtil
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	codes  map[xproto.Keycode]Key
	stop   chan struct{}
	done   chan struct{}
	handle func(KeyEvent)
}

// NewKeymapSource returns a polling source. keybind.Initialize must have
// been called on xu.
func NewKeymapSource(xu *xgbutil.XUtil, interval time.Duration, logger *slog.Logger) *KeymapSource {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KeymapSource{xu: xu, interval: interval, logger: logger}
}

var trackedKeysyms = map[string]Key{
	"Control_L": KeyControlL,
	"Control_R": KeyControlR,
	"Alt_L":     KeyAltL,
	"Alt_R":     KeyAltR,
	"Meta_L":    KeyAltL,
	"Shift_L":   KeyShiftL,
	"Shift_R":   KeyShiftR,
	"grave":     KeyGrave,
	"Tab":       KeyTab,
}

func (s *KeymapSource) Start(handle func(KeyEvent)) error {
	codes := make(map[xproto.Keycode]Key)
	for sym, key := range trackedKeysyms {
		for _, kc := range keybind.StrToKeycodes(s.xu, sym) {
			if _, exists := codes[kc]; !exists {
				codes[kc] = key
			}
		}
	}
	if len(codes) == 0 {
		return fmt.Errorf("no keycodes found for tracked keys")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return fmt.Errorf("keymap source already running")
	}
	s.codes = codes
	s.handle = handle
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	return nil
}

func (s *KeymapSource) Stop() error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

func (s *KeymapSource) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var prev []byte
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		reply, err := xproto.QueryKeymap(s.xu.Conn()).Reply()
		if err != nil {
			s.logger.Warn("keymap query failed", "error", err)
			continue
		}
		for _, ev := range diffKeymap(prev, reply.Keys, s.codes) {
			s.handle(ev)
		}
		prev = reply.Keys
	}
}

// diffKeymap compares two 32-byte key bit vectors and returns events for
// tracked keycodes whose state changed. A nil prev counts as all released.
// Releases are reported before presses so chords resolve against the
// newest modifier state.
func diffKeymap(prev, cur []byte, codes map[xproto.Keycode]Key) []KeyEvent {
	var ups, downs []KeyEvent
	for kc, key := range codes {
		was := keyBit(prev, kc)
		is := keyBit(cur, kc)
		if was == is {
			continue
		}
		if is {
			downs = append(downs, KeyEvent{Key: key, Down: true})
		} else {
			ups = append(ups, KeyEvent{Key: key, Down: false})
		}
	}
	sortModifiersFirst(downs)
	return append(ups, downs...)
}

func keyBit(keys []byte, kc xproto.Keycode) bool {
	idx := int(kc) / 8
	if idx >= len(keys) {
		return false
	}
	return keys[idx]&(1<<(uint(kc)%8)) != 0
}

// sortModifiersFirst orders presses so modifiers land before the keys they
// modify when both change within one sample.
func sortModifiersFirst(evs []KeyEvent) {
	isMod := func(k Key) bool {
		switch k {
		case KeyControlL, KeyControlR, KeyAltL, KeyAltR, KeyShiftL, KeyShiftR:
			return true
		}
		return false
	}
	i := 0
	for j := range evs {
		if isMod(evs[j].Key) {
			evs[i], evs[j] = evs[j], evs[i]
			i++
		}
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
