package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/runtimepath"
	"github.com/1broseidon/quickgerman/internal/settings"
	"github.com/1broseidon/quickgerman/internal/translate"
)

// translateTimeout bounds a TRANSLATE request on the server side.
const translateTimeout = 20 * time.Second

// Handler executes IPC commands against the running daemon.
type Handler interface {
	Show() error
	Hide() error
	Toggle() error
	Capture() error
	SetMode(mode bounds.Mode) error
	Swap() (translate.Direction, error)
	Settings() settings.AppSettings
	SetSettings(s settings.AppSettings) error
	SetStartOnLogin(enabled bool) error
	Translate(ctx context.Context, text string, dir translate.Direction) (TranslateData, error)
	Status() StatusData
	Reload() error
	Quit()
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server on the default runtime socket.
func NewServer(handler Handler, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler, logger), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	// Remove a stale socket left by a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("IPC accept error", "err", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "err", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "err", err)
	}

	// QUIT runs after the reply so the client is not left waiting.
	if req.Command == CommandQuit {
		go s.handler.Quit()
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandShow:
		return okOrError(s.handler.Show())
	case CommandHide:
		return okOrError(s.handler.Hide())
	case CommandToggle:
		return okOrError(s.handler.Toggle())
	case CommandCapture:
		return okOrError(s.handler.Capture())
	case CommandSetMode:
		return s.handleSetMode(req.Payload)
	case CommandSwap:
		dir, err := s.handler.Swap()
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		return mustOK(SwapData{Direction: string(dir)})
	case CommandGetSettings:
		return mustOK(s.handler.Settings())
	case CommandSetSettings:
		return s.handleSetSettings(req.Payload)
	case CommandSetStartOnLogin:
		return s.handleSetStartOnLogin(req.Payload)
	case CommandTranslate:
		return s.handleTranslate(req.Payload)
	case CommandGetStatus:
		status := s.handler.Status()
		status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
		status.DaemonRunning = true
		return mustOK(status)
	case CommandReload:
		if err := s.handler.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		return mustOK(nil)
	case CommandQuit:
		return mustOK(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleSetMode(payload json.RawMessage) *Response {
	var req SetModePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set mode payload: %v", err))
	}
	mode, err := bounds.ParseMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okOrError(s.handler.SetMode(mode))
}

func (s *Server) handleSetSettings(payload json.RawMessage) *Response {
	var req SetSettingsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid settings payload: %v", err))
	}
	if err := req.Settings.Validate(); err != nil {
		return NewErrorResponse(err.Error())
	}
	if err := s.handler.SetSettings(req.Settings); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save settings: %v", err))
	}
	return mustOK(s.handler.Settings())
}

func (s *Server) handleSetStartOnLogin(payload json.RawMessage) *Response {
	var req SetStartOnLoginPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid start-on-login payload: %v", err))
	}
	return okOrError(s.handler.SetStartOnLogin(req.Enabled))
}

func (s *Server) handleTranslate(payload json.RawMessage) *Response {
	var req TranslatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid translate payload: %v", err))
	}
	dir := translate.GermanToEnglish
	if req.Direction != "" {
		d, err := translate.ParseDirection(req.Direction)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		dir = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
	defer cancel()
	data, err := s.handler.Translate(ctx, req.Text, dir)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Translation failed: %v", err))
	}
	return mustOK(data)
}

func okOrError(err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return mustOK(nil)
}

func mustOK(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server and waits for in-flight
// requests.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
