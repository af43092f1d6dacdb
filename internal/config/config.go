package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HotkeysConfig selects how the global chords are observed.
type HotkeysConfig struct {
	// Source is "keymap" (poll the keyboard state, sees Alt+Tab) or
	// "grab" (grab the settings hotkey on the root window, or GrabSequence
	// when that hotkey cannot be converted).
	Source         string `yaml:"source"`
	GrabSequence   string `yaml:"grab_sequence"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

// OpenAIConfig configures the OpenAI-compatible translation provider.
type OpenAIConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
}

// TranslationConfig configures the translation client and coordinator.
type TranslationConfig struct {
	Provider         string       `yaml:"provider"`
	Endpoint         string       `yaml:"endpoint"`
	DefaultDirection string       `yaml:"default_direction"`
	TimeoutMs        int          `yaml:"timeout_ms"`
	DebounceMs       int          `yaml:"debounce_ms"`
	CacheSize        int          `yaml:"cache_size"` // 0 disables the cache
	OpenAI           OpenAIConfig `yaml:"openai"`
}

// CaptureConfig configures the copy-and-poll selection capture.
type CaptureConfig struct {
	CopyCommand      []string `yaml:"copy_command"`
	PollIntervalMs   int      `yaml:"poll_interval_ms"`
	MaxAttempts      int      `yaml:"max_attempts"`
	RestoreClipboard bool     `yaml:"restore_clipboard"`
}

// WindowConfig configures the overlay window.
type WindowConfig struct {
	AnimationMs int    `yaml:"animation_ms"`
	FrameMs     int    `yaml:"frame_ms"`
	Font        string `yaml:"font"`
}

// ActivityLogConfig configures the rotating activity log.
type ActivityLogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	File          string `yaml:"file"`
	MaxSizeMB     int    `yaml:"max_size_mb"`
	MaxFiles      int    `yaml:"max_files"`
	PreviewLength int    `yaml:"preview_length"`
}

// Config is the effective daemon configuration.
type Config struct {
	Hotkeys        HotkeysConfig     `yaml:"hotkeys"`
	Translation    TranslationConfig `yaml:"translation"`
	Capture        CaptureConfig     `yaml:"capture"`
	Window         WindowConfig      `yaml:"window"`
	StateDir       string            `yaml:"state_dir"`
	PaletteBackend string            `yaml:"palette_backend"`
	LogLevel       string            `yaml:"log_level"`
	ActivityLog    ActivityLogConfig `yaml:"activity_log"`
}

const (
	DefaultEndpoint    = "https://api.mymemory.translated.net/get"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultStateDir    = "~/.config/quickgerman"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Hotkeys: HotkeysConfig{
			Source:         "keymap",
			GrabSequence:   "Control-grave",
			PollIntervalMs: 10,
		},
		Translation: TranslationConfig{
			Provider:         "mymemory",
			Endpoint:         DefaultEndpoint,
			DefaultDirection: "de-en",
			TimeoutMs:        10000,
			DebounceMs:       300,
			CacheSize:        256,
			OpenAI: OpenAIConfig{
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     DefaultOpenAIModel,
			},
		},
		Capture: CaptureConfig{
			CopyCommand:      []string{"xdotool", "key", "--clearmodifiers", "ctrl+c"},
			PollIntervalMs:   50,
			MaxAttempts:      10,
			RestoreClipboard: true,
		},
		Window: WindowConfig{
			AnimationMs: 300,
			FrameMs:     10,
			Font:        "9x15",
		},
		StateDir:       DefaultStateDir,
		PaletteBackend: "auto",
		LogLevel:       "info",
		ActivityLog: ActivityLogConfig{
			Enabled:       false,
			MaxSizeMB:     10,
			MaxFiles:      3,
			PreviewLength: 50,
		},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Hotkeys.Source {
	case "keymap", "grab":
	default:
		return &ValidationError{Path: "hotkeys.source", Err: fmt.Errorf("source must be one of: keymap, grab")}
	}
	if c.Hotkeys.Source == "grab" && strings.TrimSpace(c.Hotkeys.GrabSequence) == "" {
		return &ValidationError{Path: "hotkeys.grab_sequence", Err: fmt.Errorf("grab_sequence is required when source is grab")}
	}
	if c.Hotkeys.PollIntervalMs <= 0 {
		return &ValidationError{Path: "hotkeys.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}

	switch c.Translation.Provider {
	case "mymemory":
		if strings.TrimSpace(c.Translation.Endpoint) == "" {
			return &ValidationError{Path: "translation.endpoint", Err: fmt.Errorf("endpoint is required for the mymemory provider")}
		}
	case "openai":
		if strings.TrimSpace(c.Translation.OpenAI.APIKeyEnv) == "" {
			return &ValidationError{Path: "translation.openai.api_key_env", Err: fmt.Errorf("api_key_env is required for the openai provider")}
		}
	default:
		return &ValidationError{Path: "translation.provider", Err: fmt.Errorf("provider must be one of: mymemory, openai")}
	}
	switch c.Translation.DefaultDirection {
	case "de-en", "en-de":
	default:
		return &ValidationError{Path: "translation.default_direction", Err: fmt.Errorf("default_direction must be one of: de-en, en-de")}
	}
	if c.Translation.TimeoutMs <= 0 {
		return &ValidationError{Path: "translation.timeout_ms", Err: fmt.Errorf("timeout_ms must be > 0")}
	}
	if c.Translation.DebounceMs < 0 {
		return &ValidationError{Path: "translation.debounce_ms", Err: fmt.Errorf("debounce_ms must be >= 0")}
	}
	if c.Translation.CacheSize < 0 {
		return &ValidationError{Path: "translation.cache_size", Err: fmt.Errorf("cache_size must be >= 0")}
	}

	if len(c.Capture.CopyCommand) == 0 || strings.TrimSpace(c.Capture.CopyCommand[0]) == "" {
		return &ValidationError{Path: "capture.copy_command", Err: fmt.Errorf("copy_command must name a program")}
	}
	if c.Capture.PollIntervalMs <= 0 {
		return &ValidationError{Path: "capture.poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}
	if c.Capture.MaxAttempts < 1 {
		return &ValidationError{Path: "capture.max_attempts", Err: fmt.Errorf("max_attempts must be >= 1")}
	}

	if c.Window.AnimationMs < 0 {
		return &ValidationError{Path: "window.animation_ms", Err: fmt.Errorf("animation_ms must be >= 0")}
	}
	if c.Window.FrameMs <= 0 {
		return &ValidationError{Path: "window.frame_ms", Err: fmt.Errorf("frame_ms must be > 0")}
	}

	if strings.TrimSpace(c.StateDir) == "" {
		return &ValidationError{Path: "state_dir", Err: fmt.Errorf("state_dir is required")}
	}
	switch c.PaletteBackend {
	case "auto", "rofi", "dmenu":
	default:
		return &ValidationError{Path: "palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, dmenu")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	if c.ActivityLog.MaxSizeMB < 0 {
		return &ValidationError{Path: "activity_log.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.ActivityLog.MaxFiles < 0 {
		return &ValidationError{Path: "activity_log.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if c.ActivityLog.PreviewLength < 0 {
		return &ValidationError{Path: "activity_log.preview_length", Err: fmt.Errorf("preview_length must be >= 0")}
	}
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (c *Config) HotkeyPollInterval() time.Duration  { return ms(c.Hotkeys.PollIntervalMs) }
func (c *Config) TranslationTimeout() time.Duration  { return ms(c.Translation.TimeoutMs) }
func (c *Config) Debounce() time.Duration            { return ms(c.Translation.DebounceMs) }
func (c *Config) CapturePollInterval() time.Duration { return ms(c.Capture.PollIntervalMs) }
func (c *Config) AnimationDuration() time.Duration   { return ms(c.Window.AnimationMs) }
func (c *Config) FrameInterval() time.Duration       { return ms(c.Window.FrameMs) }

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenAIKey reads the API key from the configured environment variable.
func (c *Config) OpenAIKey() string {
	return os.Getenv(c.Translation.OpenAI.APIKeyEnv)
}

// StatePath returns the expanded state directory.
func (c *Config) StatePath() (string, error) {
	return expandHome(c.StateDir)
}

// BoundsFile returns the path of the per-mode window bounds document.
func (c *Config) BoundsFile() (string, error) {
	dir, err := c.StatePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "window-bounds.json"), nil
}

// SettingsFile returns the path of the AppSettings document.
func (c *Config) SettingsFile() (string, error) {
	dir, err := c.StatePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// GetActivityLogConfig returns the activity log configuration with defaults applied.
func (c *Config) GetActivityLogConfig() ActivityLogConfig {
	if c == nil {
		return ActivityLogConfig{}
	}
	cfg := c.ActivityLog
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/quickgerman/activity.log")
	} else if expanded, err := expandHome(cfg.File); err == nil {
		cfg.File = expanded
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 50
	}
	return cfg
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
