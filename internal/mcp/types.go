package mcp

// TranslateInput is the input for the translate tool.
type TranslateInput struct {
	Text      string `json:"text" jsonschema:"Text to translate"`
	Direction string `json:"direction,omitempty" jsonschema:"Translation direction: de-en (German to English) or en-de (English to German). Defaults to the configured direction."`
}

// TranslateOutput is the output for the translate tool.
type TranslateOutput struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
	Result    string `json:"result"`
	OK        bool   `json:"ok"`
	// Via is "daemon" when the running overlay translated the text and
	// "direct" when the server called the provider itself.
	Via string `json:"via"`
}

// ShowOverlayInput is the input for the show_overlay tool.
type ShowOverlayInput struct {
	Mode string `json:"mode,omitempty" jsonschema:"Optional mode to switch to before showing: translation or settings"`
}

// HideOverlayInput is the input for the hide_overlay tool.
type HideOverlayInput struct{}

// SetModeInput is the input for the set_mode tool.
type SetModeInput struct {
	Mode string `json:"mode" jsonschema:"Overlay mode: translation or settings"`
}

// OverlayStatusInput is the input for the overlay_status tool.
type OverlayStatusInput struct{}

// OverlayStatusOutput describes the overlay.
type OverlayStatusOutput struct {
	Running       bool   `json:"running"`
	Visible       bool   `json:"visible"`
	Mode          string `json:"mode,omitempty"`
	Animating     bool   `json:"animating"`
	Direction     string `json:"direction,omitempty"`
	Input         string `json:"input,omitempty"`
	Output        string `json:"output,omitempty"`
	Loading       bool   `json:"loading"`
	Provider      string `json:"provider,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
}
