package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// runFunc executes a palette program with stdin and returns its stdout,
// stderr and exit code.
type runFunc func(ctx context.Context, name string, args []string, stdin string) (stdout, stderr string, code int, err error)

// commandBackend drives a dmenu-compatible program over stdin/stdout.
type commandBackend struct {
	command string
	rofi    bool
	run     runFunc
}

// NewRofiBackend returns a backend running rofi in dmenu mode.
func NewRofiBackend() Backend {
	return &commandBackend{command: "rofi", rofi: true, run: execRun}
}

// NewDmenuBackend returns a backend running dmenu.
func NewDmenuBackend() Backend {
	return &commandBackend{command: "dmenu", run: execRun}
}

func (b *commandBackend) Name() string { return b.command }

func (b *commandBackend) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	out, stderr, code, err := b.run(context.Background(), b.command, b.args(prompt, message, items), b.input(items))
	selection := strings.TrimSpace(out)
	if err != nil {
		return Item{}, fmt.Errorf("%s failed: %w", b.command, err)
	}
	if code != 0 {
		// 1 is "no selection", 130 is Ctrl+C.
		if selection == "" && (code == 1 || code == 130) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", b.command, msg)
		}
		return Item{}, fmt.Errorf("%s exited with status %d", b.command, code)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return b.parse(selection, items)
}

func (b *commandBackend) args(prompt, message string, items []Item) []string {
	if !b.rofi {
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}

	args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	if message != "" {
		args = append(args, "-mesg", message)
	}
	var active []string
	selected := -1
	for i, item := range items {
		if item.IsHeader {
			continue
		}
		if selected == -1 {
			selected = i
		}
		if item.IsActive {
			active = append(active, strconv.Itoa(i))
		}
	}
	if len(active) > 0 {
		args = append(args, "-a", strings.Join(active, ","))
	}
	if selected >= 0 {
		args = append(args, "-selected-row", strconv.Itoa(selected))
	}
	return args
}

func (b *commandBackend) input(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, b.formatItem(item))
	}
	return strings.Join(lines, "\n")
}

// formatItem renders one row. Rofi rows carry properties after a single
// NUL, as \x1f-separated key/value pairs.
func (b *commandBackend) formatItem(item Item) string {
	label := sanitizeLabel(item.Label)
	if !b.rofi {
		return label
	}
	label = html.EscapeString(label)
	if item.IsHeader {
		label = "<b>" + label + "</b>"
	}

	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeField(item.Icon))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeField(item.Meta))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

// parse maps rofi's row index, or dmenu's echoed label, back to an item.
func (b *commandBackend) parse(selection string, items []Item) (Item, error) {
	if b.rofi {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if !item.IsHeader && sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func execRun(ctx context.Context, name string, args []string, stdin string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	return stdout.String(), stderr.String(), 0, err
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}
