package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/quickgerman/internal/activity"
	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/translate"
)

func (s *Server) handleTranslate(ctx context.Context, _ *mcpsdk.CallToolRequest, args TranslateInput) (*mcpsdk.CallToolResult, TranslateOutput, error) {
	text := strings.TrimSpace(args.Text)
	if text == "" {
		return nil, TranslateOutput{}, fmt.Errorf("text is required")
	}
	dir := s.direction
	if args.Direction != "" {
		parsed, err := translate.ParseDirection(args.Direction)
		if err != nil {
			return nil, TranslateOutput{}, err
		}
		dir = parsed
	}

	out := TranslateOutput{Text: text, Direction: string(dir)}
	if data, err := s.daemon.Translate(text, dir); err == nil {
		out.Result, out.OK, out.Via = data.Result, data.OK, "daemon"
	} else {
		result, ok, err := s.direct.Translate(ctx, text, dir)
		if err != nil {
			return nil, TranslateOutput{}, err
		}
		out.Result, out.OK, out.Via = result, ok, "direct"
	}

	s.logger.Log(activity.ActionTranslate, map[string]any{
		"source":    "mcp",
		"via":       out.Via,
		"direction": out.Direction,
		"text":      s.logger.Preview(text),
		"ok":        out.OK,
	})
	return nil, out, nil
}

func (s *Server) handleShowOverlay(_ context.Context, _ *mcpsdk.CallToolRequest, args ShowOverlayInput) (*mcpsdk.CallToolResult, OverlayStatusOutput, error) {
	if args.Mode != "" {
		mode, err := bounds.ParseMode(args.Mode)
		if err != nil {
			return nil, OverlayStatusOutput{}, err
		}
		if err := s.daemon.SetMode(mode); err != nil {
			return nil, OverlayStatusOutput{}, daemonError(err)
		}
	}
	if err := s.daemon.Show(); err != nil {
		return nil, OverlayStatusOutput{}, daemonError(err)
	}
	return nil, s.status(), nil
}

func (s *Server) handleHideOverlay(_ context.Context, _ *mcpsdk.CallToolRequest, _ HideOverlayInput) (*mcpsdk.CallToolResult, OverlayStatusOutput, error) {
	if err := s.daemon.Hide(); err != nil {
		return nil, OverlayStatusOutput{}, daemonError(err)
	}
	return nil, s.status(), nil
}

func (s *Server) handleSetMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetModeInput) (*mcpsdk.CallToolResult, OverlayStatusOutput, error) {
	mode, err := bounds.ParseMode(args.Mode)
	if err != nil {
		return nil, OverlayStatusOutput{}, err
	}
	if err := s.daemon.SetMode(mode); err != nil {
		return nil, OverlayStatusOutput{}, daemonError(err)
	}
	return nil, s.status(), nil
}

func (s *Server) handleOverlayStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ OverlayStatusInput) (*mcpsdk.CallToolResult, OverlayStatusOutput, error) {
	return nil, s.status(), nil
}

// status reports the daemon's state, or Running=false when it cannot be
// reached.
func (s *Server) status() OverlayStatusOutput {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return OverlayStatusOutput{Running: false}
	}
	return OverlayStatusOutput{
		Running:       true,
		Visible:       st.Visible,
		Mode:          st.Mode,
		Animating:     st.Animating,
		Direction:     st.Direction,
		Input:         st.Input,
		Output:        st.Output,
		Loading:       st.Loading,
		Provider:      st.Provider,
		UptimeSeconds: st.UptimeSeconds,
	}
}

func daemonError(err error) error {
	return fmt.Errorf("quickgerman daemon: %w (start it with: quickgerman daemon)", err)
}
