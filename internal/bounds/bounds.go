// Package bounds persists the overlay window geometry for each mode.
package bounds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Mode is the overlay's active panel.
type Mode string

const (
	ModeTranslation Mode = "Translation"
	ModeSettings    Mode = "Settings"
)

// Modes lists every mode in persistence order.
var Modes = []Mode{ModeTranslation, ModeSettings}

// ParseMode accepts the persisted name or a lowercase alias.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "translation", "translate":
		return ModeTranslation, nil
	case "settings":
		return ModeSettings, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want translation or settings)", s)
	}
}

func (m Mode) String() string { return string(m) }

// WindowBounds is a window rectangle. A nil X or Y means the window should
// be centered on the active monitor.
type WindowBounds struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// At returns b positioned at x,y.
func (b WindowBounds) At(x, y int) WindowBounds {
	b.X = &x
	b.Y = &y
	return b
}

// Positioned reports whether both coordinates are set.
func (b WindowBounds) Positioned() bool {
	return b.X != nil && b.Y != nil
}

// Equal compares geometry including position presence.
func (b WindowBounds) Equal(o WindowBounds) bool {
	if b.Width != o.Width || b.Height != o.Height {
		return false
	}
	return intPtrEqual(b.X, o.X) && intPtrEqual(b.Y, o.Y)
}

func (b WindowBounds) String() string {
	if b.Positioned() {
		return fmt.Sprintf("%dx%d+%d+%d", b.Width, b.Height, *b.X, *b.Y)
	}
	return fmt.Sprintf("%dx%d (centered)", b.Width, b.Height)
}

func (b WindowBounds) valid() bool {
	return b.Width > 0 && b.Height > 0
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Default returns the geometry used for a mode with no saved bounds.
func Default(m Mode) WindowBounds {
	if m == ModeSettings {
		return WindowBounds{Width: 400, Height: 800}
	}
	return WindowBounds{Width: 800, Height: 400}
}

// MinSize returns the minimum window size enforced while a mode is active.
func MinSize(m Mode) Size {
	if m == ModeSettings {
		return Size{Width: 360, Height: 480}
	}
	return Size{Width: 400, Height: 200}
}

// Store holds the per-mode bounds document. Every Set flushes the whole
// document to disk.
type Store struct {
	mu     sync.Mutex
	path   string
	bounds map[Mode]WindowBounds
}

// Load reads the bounds document at path. Missing, unreadable or malformed
// files yield a store of defaults together with the error so the caller can
// log it. A legacy flat object is treated as the Translation bounds.
func Load(path string) (*Store, error) {
	s := &Store{path: path, bounds: defaults()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read window state: %w", err)
	}
	parsed, err := decode(data)
	if err != nil {
		return s, fmt.Errorf("failed to parse window state %s: %w", path, err)
	}
	for m, b := range parsed {
		s.bounds[m] = b
	}
	return s, nil
}

// NewMemoryStore returns a store that never touches disk.
func NewMemoryStore() *Store {
	return &Store{bounds: defaults()}
}

func defaults() map[Mode]WindowBounds {
	out := make(map[Mode]WindowBounds, len(Modes))
	for _, m := range Modes {
		out[m] = Default(m)
	}
	return out
}

func decode(data []byte) (map[Mode]WindowBounds, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make(map[Mode]WindowBounds)
	_, hasTranslation := doc[string(ModeTranslation)]
	_, hasSettings := doc[string(ModeSettings)]
	if !hasTranslation && !hasSettings {
		var flat WindowBounds
		if err := json.Unmarshal(data, &flat); err != nil {
			return nil, err
		}
		if !flat.valid() {
			return nil, fmt.Errorf("legacy bounds have non-positive size %dx%d", flat.Width, flat.Height)
		}
		out[ModeTranslation] = flat
		return out, nil
	}

	for _, m := range Modes {
		raw, ok := doc[string(m)]
		if !ok {
			continue
		}
		var b WindowBounds
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		if b.valid() {
			out[m] = b
		}
	}
	return out, nil
}

// Path returns the backing file, empty for memory stores.
func (s *Store) Path() string { return s.path }

// Get returns the saved bounds for m, or its default.
func (s *Store) Get(m Mode) WindowBounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bounds[m]; ok {
		return b
	}
	return Default(m)
}

// Set records b for m and flushes the document. Non-positive sizes are
// rejected. The in-memory value is kept even when the flush fails.
func (s *Store) Set(m Mode, b WindowBounds) error {
	if !b.valid() {
		return fmt.Errorf("invalid bounds for %s: %dx%d", m, b.Width, b.Height)
	}
	s.mu.Lock()
	s.bounds[m] = b
	doc := s.documentLocked()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	return write(path, doc)
}

func (s *Store) documentLocked() map[string]WindowBounds {
	doc := make(map[string]WindowBounds, len(s.bounds))
	for m, b := range s.bounds {
		doc[string(m)] = b
	}
	return doc
}

func write(path string, doc map[string]WindowBounds) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode window state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write window state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace window state: %w", err)
	}
	return nil
}
