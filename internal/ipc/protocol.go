package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/quickgerman/internal/settings"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandShow            CommandType = "SHOW"
	CommandHide            CommandType = "HIDE"
	CommandToggle          CommandType = "TOGGLE"
	CommandCapture         CommandType = "CAPTURE"
	CommandSetMode         CommandType = "SET_MODE"
	CommandSwap            CommandType = "SWAP"
	CommandSetSettings     CommandType = "SET_SETTINGS"
	CommandSetStartOnLogin CommandType = "SET_START_ON_LOGIN"
	CommandGetSettings     CommandType = "GET_SETTINGS"
	CommandTranslate       CommandType = "TRANSLATE"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandReload          CommandType = "RELOAD"
	CommandQuit            CommandType = "QUIT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Visible       bool   `json:"visible"`
	Mode          string `json:"mode"`
	Animating     bool   `json:"animating"`
	Direction     string `json:"direction"`
	Input         string `json:"input"`
	Output        string `json:"output"`
	Loading       bool   `json:"loading"`
	Provider      string `json:"provider"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

type SetModePayload struct {
	Mode string `json:"mode"`
}

type SetSettingsPayload struct {
	Settings settings.AppSettings `json:"settings"`
}

type SetStartOnLoginPayload struct {
	Enabled bool `json:"enabled"`
}

type TranslatePayload struct {
	Text      string `json:"text"`
	Direction string `json:"direction,omitempty"`
}

// TranslateData is the result of TRANSLATE. OK is false when the provider
// had no usable translation.
type TranslateData struct {
	Text      string `json:"text"`
	Direction string `json:"direction"`
	Result    string `json:"result"`
	OK        bool   `json:"ok"`
}

type SwapData struct {
	Direction string `json:"direction"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
