package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/runtimepath"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/translate"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default runtime socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// sendRequest surfaces the connection error.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	return c.sendRequestTimeout(req, c.timeout)
}

func (c *Client) sendRequestTimeout(req *Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) simple(cmd CommandType) error {
	_, err := c.sendRequest(&Request{Command: cmd})
	return err
}

func (c *Client) withPayload(cmd CommandType, payload any) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
	}
	return c.sendRequest(&Request{Command: cmd, Payload: data})
}

// Show sends a SHOW command to the daemon.
func (c *Client) Show() error { return c.simple(CommandShow) }

// Hide sends a HIDE command to the daemon.
func (c *Client) Hide() error { return c.simple(CommandHide) }

// Toggle sends a TOGGLE command to the daemon.
func (c *Client) Toggle() error { return c.simple(CommandToggle) }

// Capture asks the daemon to copy the current selection into the overlay.
func (c *Client) Capture() error { return c.simple(CommandCapture) }

// Reload sends a RELOAD command to the daemon.
func (c *Client) Reload() error { return c.simple(CommandReload) }

// Quit asks the daemon to exit.
func (c *Client) Quit() error { return c.simple(CommandQuit) }

// SetMode switches the overlay mode.
func (c *Client) SetMode(mode bounds.Mode) error {
	_, err := c.withPayload(CommandSetMode, SetModePayload{Mode: string(mode)})
	return err
}

// Swap flips the translation direction and returns the new one.
func (c *Client) Swap() (translate.Direction, error) {
	resp, err := c.sendRequest(&Request{Command: CommandSwap})
	if err != nil {
		return "", err
	}
	var data SwapData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse swap data: %w", err)
	}
	return translate.Direction(data.Direction), nil
}

// GetSettings retrieves the daemon's current AppSettings.
func (c *Client) GetSettings() (settings.AppSettings, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetSettings})
	if err != nil {
		return settings.AppSettings{}, err
	}
	return decodeSettings(resp)
}

// SetSettings replaces the daemon's AppSettings and returns the stored value.
func (c *Client) SetSettings(s settings.AppSettings) (settings.AppSettings, error) {
	resp, err := c.withPayload(CommandSetSettings, SetSettingsPayload{Settings: s})
	if err != nil {
		return settings.AppSettings{}, err
	}
	return decodeSettings(resp)
}

func decodeSettings(resp *Response) (settings.AppSettings, error) {
	var s settings.AppSettings
	if err := json.Unmarshal(resp.Data, &s); err != nil {
		return settings.AppSettings{}, fmt.Errorf("failed to parse settings data: %w", err)
	}
	return s, nil
}

// SetStartOnLogin toggles the login autostart entry.
func (c *Client) SetStartOnLogin(enabled bool) error {
	_, err := c.withPayload(CommandSetStartOnLogin, SetStartOnLoginPayload{Enabled: enabled})
	return err
}

// Translate asks the daemon's translation client for a one-off translation.
func (c *Client) Translate(text string, dir translate.Direction) (*TranslateData, error) {
	payload, err := json.Marshal(TranslatePayload{Text: text, Direction: string(dir)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal translate payload: %w", err)
	}
	resp, err := c.sendRequestTimeout(&Request{Command: CommandTranslate, Payload: payload}, translateTimeout+c.timeout)
	if err != nil {
		return nil, err
	}
	var data TranslateData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse translate data: %w", err)
	}
	return &data, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
