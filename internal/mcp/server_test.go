package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/quickgerman/internal/bounds"
	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/translate"
)

var errNoDaemon = errors.New("dial unix: connection refused")

type fakeDaemon struct {
	running bool
	status  ipc.StatusData
	calls   []string
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if !d.running {
		return nil, errNoDaemon
	}
	st := d.status
	return &st, nil
}

func (d *fakeDaemon) Show() error {
	if !d.running {
		return errNoDaemon
	}
	d.calls = append(d.calls, "show")
	d.status.Visible = true
	return nil
}

func (d *fakeDaemon) Hide() error {
	if !d.running {
		return errNoDaemon
	}
	d.calls = append(d.calls, "hide")
	d.status.Visible = false
	return nil
}

func (d *fakeDaemon) SetMode(m bounds.Mode) error {
	if !d.running {
		return errNoDaemon
	}
	d.calls = append(d.calls, "mode:"+string(m))
	d.status.Mode = string(m)
	return nil
}

func (d *fakeDaemon) Translate(text string, dir translate.Direction) (*ipc.TranslateData, error) {
	if !d.running {
		return nil, errNoDaemon
	}
	d.calls = append(d.calls, "translate:"+text)
	return &ipc.TranslateData{Text: text, Direction: string(dir), Result: "from daemon", OK: true}, nil
}

type directTranslator struct {
	gotDir translate.Direction
}

func (d *directTranslator) Translate(_ context.Context, text string, dir translate.Direction) (string, bool, error) {
	d.gotDir = dir
	if text == "xyz" {
		return "", false, nil
	}
	return "from provider", true, nil
}

func newTestServer(d *fakeDaemon) (*Server, *directTranslator) {
	direct := &directTranslator{}
	return newServer(d, direct, translate.GermanToEnglish, nil), direct
}

func TestTranslatePrefersDaemon(t *testing.T) {
	s, _ := newTestServer(&fakeDaemon{running: true})
	_, out, err := s.handleTranslate(context.Background(), nil, TranslateInput{Text: " Hallo "})
	if err != nil {
		t.Fatalf("handleTranslate() error = %v", err)
	}
	if out.Via != "daemon" || out.Result != "from daemon" || out.Text != "Hallo" || out.Direction != "de-en" {
		t.Fatalf("handleTranslate() = %+v", out)
	}
}

func TestTranslateFallsBackToProvider(t *testing.T) {
	s, direct := newTestServer(&fakeDaemon{})
	_, out, err := s.handleTranslate(context.Background(), nil, TranslateInput{Text: "Hello", Direction: "en-de"})
	if err != nil {
		t.Fatalf("handleTranslate() error = %v", err)
	}
	if out.Via != "direct" || !out.OK || out.Result != "from provider" {
		t.Fatalf("handleTranslate() = %+v", out)
	}
	if direct.gotDir != translate.EnglishToGerman {
		t.Fatalf("direct direction = %q, want en-de", direct.gotDir)
	}

	_, out, err = s.handleTranslate(context.Background(), nil, TranslateInput{Text: "xyz"})
	if err != nil || out.OK {
		t.Fatalf("handleTranslate(no result) = %+v, %v", out, err)
	}
}

func TestTranslateValidation(t *testing.T) {
	s, _ := newTestServer(&fakeDaemon{running: true})
	tests := []struct {
		name string
		in   TranslateInput
	}{
		{"blank", TranslateInput{Text: "   "}},
		{"bad direction", TranslateInput{Text: "Hallo", Direction: "de-fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.handleTranslate(context.Background(), nil, tt.in); err == nil {
				t.Fatalf("handleTranslate(%+v) error = nil", tt.in)
			}
		})
	}
}

func TestShowOverlayWithMode(t *testing.T) {
	d := &fakeDaemon{running: true, status: ipc.StatusData{Mode: "translation"}}
	s, _ := newTestServer(d)
	_, out, err := s.handleShowOverlay(context.Background(), nil, ShowOverlayInput{Mode: "settings"})
	if err != nil {
		t.Fatalf("handleShowOverlay() error = %v", err)
	}
	if !out.Running || !out.Visible || out.Mode != "settings" {
		t.Fatalf("handleShowOverlay() = %+v", out)
	}
	if len(d.calls) != 2 || d.calls[0] != "mode:settings" || d.calls[1] != "show" {
		t.Fatalf("calls = %v", d.calls)
	}

	if _, _, err := s.handleShowOverlay(context.Background(), nil, ShowOverlayInput{Mode: "tiny"}); err == nil {
		t.Fatalf("handleShowOverlay(bad mode) error = nil")
	}
}

func TestHideAndSetMode(t *testing.T) {
	d := &fakeDaemon{running: true, status: ipc.StatusData{Visible: true, Mode: "translation"}}
	s, _ := newTestServer(d)

	_, out, err := s.handleHideOverlay(context.Background(), nil, HideOverlayInput{})
	if err != nil || out.Visible {
		t.Fatalf("handleHideOverlay() = %+v, %v", out, err)
	}
	_, out, err = s.handleSetMode(context.Background(), nil, SetModeInput{Mode: "settings"})
	if err != nil || out.Mode != "settings" {
		t.Fatalf("handleSetMode() = %+v, %v", out, err)
	}
}

func TestOverlayToolsWithoutDaemon(t *testing.T) {
	s, _ := newTestServer(&fakeDaemon{})
	if _, _, err := s.handleShowOverlay(context.Background(), nil, ShowOverlayInput{}); !errors.Is(err, errNoDaemon) {
		t.Fatalf("handleShowOverlay() error = %v, want wrapped daemon error", err)
	}
	if _, _, err := s.handleHideOverlay(context.Background(), nil, HideOverlayInput{}); err == nil {
		t.Fatalf("handleHideOverlay() error = nil")
	}
	_, out, err := s.handleOverlayStatus(context.Background(), nil, OverlayStatusInput{})
	if err != nil || out.Running {
		t.Fatalf("handleOverlayStatus() = %+v, %v", out, err)
	}
}

func TestNewServerRejectsUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Translation.Provider = "babelfish"
	if _, err := NewServer(cfg, &fakeDaemon{}); err == nil {
		t.Fatalf("NewServer() error = nil for unknown provider")
	}
}

func TestNewServerDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s, err := NewServer(config.DefaultConfig(), &fakeDaemon{})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer s.Close()
	if s.direction != translate.GermanToEnglish {
		t.Fatalf("direction = %q", s.direction)
	}
}
