package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// BuildEffectiveConfig overlays raw onto DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if h := raw.Hotkeys; h != nil {
		set(&cfg.Hotkeys.Source, h.Source)
		set(&cfg.Hotkeys.GrabSequence, h.GrabSequence)
		set(&cfg.Hotkeys.PollIntervalMs, h.PollIntervalMs)
	}

	if t := raw.Translation; t != nil {
		set(&cfg.Translation.Provider, t.Provider)
		set(&cfg.Translation.Endpoint, t.Endpoint)
		set(&cfg.Translation.DefaultDirection, t.DefaultDirection)
		set(&cfg.Translation.TimeoutMs, t.TimeoutMs)
		set(&cfg.Translation.DebounceMs, t.DebounceMs)
		set(&cfg.Translation.CacheSize, t.CacheSize)
		if ai := t.OpenAI; ai != nil {
			set(&cfg.Translation.OpenAI.APIKeyEnv, ai.APIKeyEnv)
			set(&cfg.Translation.OpenAI.Model, ai.Model)
			set(&cfg.Translation.OpenAI.BaseURL, ai.BaseURL)
		}
	}

	if c := raw.Capture; c != nil {
		if c.CopyCommand != nil {
			cfg.Capture.CopyCommand = append([]string(nil), c.CopyCommand...)
		}
		set(&cfg.Capture.PollIntervalMs, c.PollIntervalMs)
		set(&cfg.Capture.MaxAttempts, c.MaxAttempts)
		set(&cfg.Capture.RestoreClipboard, c.RestoreClipboard)
	}

	if w := raw.Window; w != nil {
		set(&cfg.Window.AnimationMs, w.AnimationMs)
		set(&cfg.Window.FrameMs, w.FrameMs)
		set(&cfg.Window.Font, w.Font)
	}

	set(&cfg.StateDir, raw.StateDir)
	set(&cfg.PaletteBackend, raw.PaletteBackend)
	set(&cfg.LogLevel, raw.LogLevel)

	if a := raw.ActivityLog; a != nil {
		set(&cfg.ActivityLog.Enabled, a.Enabled)
		set(&cfg.ActivityLog.File, a.File)
		set(&cfg.ActivityLog.MaxSizeMB, a.MaxSizeMB)
		set(&cfg.ActivityLog.MaxFiles, a.MaxFiles)
		set(&cfg.ActivityLog.PreviewLength, a.PreviewLength)
	}

	return cfg, nil
}
