package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Copier makes the foreground application copy its selection.
type Copier interface {
	SimulateCopy(ctx context.Context) error
}

// SystemClipboard is the desktop clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// DefaultCopyCommand sends Ctrl+C to the focused window.
var DefaultCopyCommand = []string{"xdotool", "key", "--clearmodifiers", "ctrl+c"}

// CommandCopier runs an external command to synthesize the copy keystroke.
type CommandCopier struct {
	Argv []string
}

func (c CommandCopier) SimulateCopy(ctx context.Context) error {
	argv := c.Argv
	if len(argv) == 0 {
		argv = DefaultCopyCommand
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
