// Package settings persists the user-facing overlay preferences.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Theme is the overlay color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Themes lists the accepted themes in cycle order.
var Themes = []Theme{ThemeSystem, ThemeLight, ThemeDark}

// Next returns the theme following t in cycle order.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th == t {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeSystem
}

func (t Theme) valid() bool {
	for _, th := range Themes {
		if th == t {
			return true
		}
	}
	return false
}

// AppSettings is the persisted preferences document.
type AppSettings struct {
	Spellcheck     bool   `json:"spellcheck"`
	StartOnStartup bool   `json:"startOnStartup"`
	Theme          Theme  `json:"theme"`
	Hotkey         string `json:"hotkey"`
}

// Defaults returns the settings used for any key missing from disk.
func Defaults() AppSettings {
	return AppSettings{
		Spellcheck:     true,
		StartOnStartup: false,
		Theme:          ThemeSystem,
		Hotkey:         "Ctrl+`",
	}
}

// Validate reports values that cannot be applied.
func (s AppSettings) Validate() error {
	if !s.Theme.valid() {
		return fmt.Errorf("invalid theme %q (want light, dark or system)", s.Theme)
	}
	if strings.TrimSpace(s.Hotkey) == "" {
		return fmt.Errorf("hotkey is required")
	}
	return nil
}

// Keys lists the settable keys accepted by Apply.
var Keys = []string{"spellcheck", "startOnStartup", "theme", "hotkey"}

// Apply sets a single key from its string form.
func (s *AppSettings) Apply(key, value string) error {
	switch strings.ToLower(key) {
	case "spellcheck":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("spellcheck: %w", err)
		}
		s.Spellcheck = b
	case "startonstartup", "start_on_startup":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("startOnStartup: %w", err)
		}
		s.StartOnStartup = b
	case "theme":
		th := Theme(strings.ToLower(strings.TrimSpace(value)))
		if !th.valid() {
			return fmt.Errorf("invalid theme %q (want light, dark or system)", value)
		}
		s.Theme = th
	case "hotkey":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("hotkey is required")
		}
		s.Hotkey = strings.TrimSpace(value)
	default:
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

// Store holds the current settings and flushes every change to disk.
type Store struct {
	mu      sync.Mutex
	path    string
	current AppSettings
}

// Load reads the settings document at path and overlays it onto the
// defaults. Keys missing from the file keep their default, unknown keys
// are ignored, and a key whose value is unusable falls back to its default
// without affecting the others. Unreadable or malformed documents yield
// the defaults. Any fallback is reported in the returned error alongside
// a usable Store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, current: Defaults()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return s, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	merged, err := overlay(Defaults(), doc)
	s.current = merged
	if err != nil {
		return s, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s, nil
}

// overlay applies each known key of doc onto base independently. Keys
// that fail to decode or validate keep base's value and are reported.
func overlay(base AppSettings, doc map[string]json.RawMessage) (AppSettings, error) {
	var errs []error
	field := func(key string, dst any, check func() error) {
		raw, ok := doc[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			errs = append(errs, fmt.Errorf("%s reset to default: %w", key, err))
			return
		}
		if err := check(); err != nil {
			errs = append(errs, fmt.Errorf("%s reset to default: %w", key, err))
		}
	}

	next := base

	spellcheck := base.Spellcheck
	field("spellcheck", &spellcheck, func() error {
		next.Spellcheck = spellcheck
		return nil
	})

	startup := base.StartOnStartup
	field("startOnStartup", &startup, func() error {
		next.StartOnStartup = startup
		return nil
	})

	var theme Theme
	field("theme", &theme, func() error {
		if !theme.valid() {
			return fmt.Errorf("invalid theme %q (want light, dark or system)", theme)
		}
		next.Theme = theme
		return nil
	})

	var hotkey string
	field("hotkey", &hotkey, func() error {
		if strings.TrimSpace(hotkey) == "" {
			return fmt.Errorf("hotkey is required")
		}
		next.Hotkey = strings.TrimSpace(hotkey)
		return nil
	})

	return next, errors.Join(errs...)
}

// NewMemoryStore returns a store seeded with defaults that never touches
// disk.
func NewMemoryStore() *Store {
	return &Store{current: Defaults()}
}

// Path returns the backing file, empty for memory stores.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current settings.
func (s *Store) Get() AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the settings and flushes them. The in-memory value is kept
// even when the flush fails.
func (s *Store) Set(next AppSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = next
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	return Write(path, next)
}

// Write stores settings at path without going through a Store.
func Write(path string, st AppSettings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
