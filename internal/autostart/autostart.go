// Package autostart manages the XDG autostart entry that starts the
// daemon on login.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const entryName = "quickgerman.desktop"

// Entry is an XDG autostart desktop entry at a fixed path.
type Entry struct {
	Path string
	// Exec is the command line written to the entry's Exec key.
	Exec string
}

// Default returns the entry under $XDG_CONFIG_HOME/autostart (or
// ~/.config/autostart) that runs exe with the daemon subcommand.
func Default(exe string) (Entry, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Entry{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return Entry{
		Path: filepath.Join(dir, "autostart", entryName),
		Exec: quoteExec(exe) + " daemon",
	}, nil
}

// quoteExec quotes an executable path per the XDG desktop entry rules when it
// contains characters that need it.
func quoteExec(exe string) string {
	if !strings.ContainsAny(exe, " \t\"'\\$`") {
		return exe
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(exe) + `"`
}

// Contents renders the desktop entry.
func (e Entry) Contents() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=QuickGerman\n")
	b.WriteString("Comment=German/English translation overlay\n")
	fmt.Fprintf(&b, "Exec=%s\n", e.Exec)
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// Enabled reports whether the entry exists.
func (e Entry) Enabled() bool {
	_, err := os.Stat(e.Path)
	return err == nil
}

// Set writes the entry when on is true and removes it otherwise. Both
// directions are idempotent.
func (e Entry) Set(on bool) error {
	if !on {
		if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove autostart entry: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(e.Path), 0755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}
	if err := os.WriteFile(e.Path, []byte(e.Contents()), 0644); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}
	return nil
}
