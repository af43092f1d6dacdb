package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
)

// renderStatus shows the overlay state reported by the daemon.
func renderStatus(st *ipc.StatusData, width, height int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)

	if st == nil {
		return style.Foreground(lipgloss.Color("241")).
			Render("The daemon is not running.\n\nStart it with: quickgerman daemon")
	}

	loading := ""
	if st.Loading {
		loading = " (translating)"
	}
	lines := []string{
		"",
		row("Visible", onOff(st.Visible)),
		row("Mode", st.Mode),
		row("Direction", st.Direction),
		row("Provider", st.Provider),
		row("Uptime", (time.Duration(st.UptimeSeconds) * time.Second).String()),
		"",
		row("Input", st.Input),
		row("Output", st.Output+loading),
		"",
		dimStyle.Render("  Press 'r' to refresh"),
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderConfig lists every config path with its effective value and where
// it came from.
func renderConfig(res *config.LoadResult, loadErr error, width, height int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2)

	if loadErr != nil {
		return style.Foreground(lipgloss.Color("196")).Render("Config error: " + loadErr.Error())
	}
	if res == nil || res.Config == nil {
		return style.Foreground(lipgloss.Color("241")).Render("No config loaded")
	}

	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(32)
	lines := []string{dimStyle.Render("  effective configuration (value  source)"), ""}
	for _, p := range config.Paths(res.Config) {
		value, src, err := config.Explain(res, p)
		if err != nil {
			continue
		}
		lines = append(lines, pathStyle.Render(p)+valueStyle.Render(formatValue(value))+"  "+dimStyle.Render(src.String()))
	}
	if max(height-2, 1) < len(lines) {
		lines = lines[:max(height-2, 1)]
	}
	return style.Render(strings.Join(lines, "\n"))
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(val)
	}
}
