package config

type RawHotkeys struct {
	Source         *string `yaml:"source"`
	GrabSequence   *string `yaml:"grab_sequence"`
	PollIntervalMs *int    `yaml:"poll_interval_ms"`
}

type RawOpenAI struct {
	APIKeyEnv *string `yaml:"api_key_env"`
	Model     *string `yaml:"model"`
	BaseURL   *string `yaml:"base_url"`
}

type RawTranslation struct {
	Provider         *string    `yaml:"provider"`
	Endpoint         *string    `yaml:"endpoint"`
	DefaultDirection *string    `yaml:"default_direction"`
	TimeoutMs        *int       `yaml:"timeout_ms"`
	DebounceMs       *int       `yaml:"debounce_ms"`
	CacheSize        *int       `yaml:"cache_size"`
	OpenAI           *RawOpenAI `yaml:"openai"`
}

type RawCapture struct {
	CopyCommand      []string `yaml:"copy_command"`
	PollIntervalMs   *int     `yaml:"poll_interval_ms"`
	MaxAttempts      *int     `yaml:"max_attempts"`
	RestoreClipboard *bool    `yaml:"restore_clipboard"`
}

type RawWindow struct {
	AnimationMs *int    `yaml:"animation_ms"`
	FrameMs     *int    `yaml:"frame_ms"`
	Font        *string `yaml:"font"`
}

type RawActivityLog struct {
	Enabled       *bool   `yaml:"enabled"`
	File          *string `yaml:"file"`
	MaxSizeMB     *int    `yaml:"max_size_mb"`
	MaxFiles      *int    `yaml:"max_files"`
	PreviewLength *int    `yaml:"preview_length"`
}

// RawConfig mirrors the YAML document. Nil fields were not set and keep
// their default.
type RawConfig struct {
	Hotkeys        *RawHotkeys     `yaml:"hotkeys"`
	Translation    *RawTranslation `yaml:"translation"`
	Capture        *RawCapture     `yaml:"capture"`
	Window         *RawWindow      `yaml:"window"`
	StateDir       *string         `yaml:"state_dir"`
	PaletteBackend *string         `yaml:"palette_backend"`
	LogLevel       *string         `yaml:"log_level"`
	ActivityLog    *RawActivityLog `yaml:"activity_log"`
}
