// Package mcp exposes the overlay to MCP clients over stdio.
package mcp

import (
	"context"
	"log"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/quickgerman/internal/activity"
	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/translate"
)

const (
	ServerName    = "quickgerman"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Show() error
	Hide() error
	SetMode(mode bounds.Mode) error
	Translate(text string, dir translate.Direction) (*ipc.TranslateData, error)
}

// Server is the MCP server for the quickgerman overlay.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	direct    translate.Translator
	direction translate.Direction
	logger    *activity.Logger
}

// NewServer creates a server that talks to the daemon over IPC and
// translates directly with the configured provider when the daemon is not
// running.
func NewServer(cfg *config.Config, daemon Daemon) (*Server, error) {
	direct, err := translate.New(translate.Options{
		Provider:      cfg.Translation.Provider,
		Endpoint:      cfg.Translation.Endpoint,
		Timeout:       cfg.TranslationTimeout(),
		CacheSize:     cfg.Translation.CacheSize,
		OpenAIKey:     cfg.OpenAIKey(),
		OpenAIModel:   cfg.Translation.OpenAI.Model,
		OpenAIBaseURL: cfg.Translation.OpenAI.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	al := cfg.GetActivityLogConfig()
	logger, err := activity.New(activity.Config{
		Enabled:       al.Enabled,
		FilePath:      al.File,
		MaxSizeMB:     al.MaxSizeMB,
		MaxFiles:      al.MaxFiles,
		PreviewLength: al.PreviewLength,
	})
	if err != nil {
		log.Printf("Warning: failed to initialize MCP activity log: %v", err)
		logger = nil
	}

	dir, err := translate.ParseDirection(cfg.Translation.DefaultDirection)
	if err != nil {
		dir = translate.GermanToEnglish
	}
	return newServer(daemon, direct, dir, logger), nil
}

func newServer(daemon Daemon, direct translate.Translator, dir translate.Direction, logger *activity.Logger) *Server {
	s := &Server{
		daemon:    daemon,
		direct:    direct,
		direction: dir,
		logger:    logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.logger.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "translate",
		Description: "Translate text between German and English. Uses the running quickgerman daemon when available, otherwise calls the configured translation provider directly. Returns ok=false when the provider had no usable result.",
	}, s.handleTranslate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_overlay",
		Description: "Show the quickgerman overlay window, optionally switching it to translation or settings mode first. Requires the daemon.",
	}, s.handleShowOverlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_overlay",
		Description: "Hide the quickgerman overlay window. Hiding an already hidden overlay is a no-op. Requires the daemon.",
	}, s.handleHideOverlay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_mode",
		Description: "Switch the overlay between translation and settings mode. The window animates to the saved size for that mode. Requires the daemon.",
	}, s.handleSetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_status",
		Description: "Report whether the daemon is running and the overlay's visibility, mode, direction, current input and output.",
	}, s.handleOverlayStatus)
}
