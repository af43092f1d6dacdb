package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/settings"
)

// statusSource reports the daemon state; nil status means no daemon.
type statusSource interface {
	GetStatus() (*ipc.StatusData, error)
}

// model is the root bubbletea model for the TUI.
type model struct {
	result  *config.LoadResult
	loadErr error
	daemon  statusSource
	store   SettingsStore

	activeTab Tab

	settingsTab SettingsTab

	// Save overlay
	original    settings.AppSettings
	saveOverlay SaveOverlay

	status *ipc.StatusData

	width  int
	height int
}

func newModel(result *config.LoadResult, loadErr error, daemon statusSource, store SettingsStore) model {
	m := model{
		result:    result,
		loadErr:   loadErr,
		daemon:    daemon,
		store:     store,
		activeTab: TabSettings,
	}

	current, err := store.Load()
	if err != nil && m.loadErr == nil {
		m.loadErr = err
	}
	m.original = current
	m.settingsTab = NewSettingsTab(current)
	m.refreshStatus()
	return m
}

func (m *model) refreshStatus() {
	if m.daemon == nil {
		m.status = nil
		return
	}
	st, err := m.daemon.GetStatus()
	if err != nil {
		m.status = nil
		return
	}
	m.status = st
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	return max(m.height-4, 1)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prev := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.settingsTab.Settings(), m.store)
			if prev == savePreview && m.saveOverlay.SaveSucceeded() {
				m.original = m.settingsTab.Settings()
				m.refreshStatus()
			}
		case tea.WindowSizeMsg:
			m.width = msg.Width
			m.height = msg.Height
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		m.saveOverlay.Show(m.original, m.settingsTab.Settings(), m.store.Target())
		return m, nil
	}

	if m.activeTab == TabSettings && m.settingsTab.editing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.resize(msg)
			return m, nil
		}
		var cmd tea.Cmd
		m.settingsTab, cmd = m.settingsTab.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabSettings
			return m, nil
		case "2":
			m.activeTab = TabStatus
			m.refreshStatus()
			return m, nil
		case "3":
			m.activeTab = TabConfig
			return m, nil
		case "r":
			m.refreshStatus()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	}

	var cmd tea.Cmd
	if m.activeTab == TabSettings {
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	}
	return m, cmd
}

func (m *model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.settingsTab, _ = m.settingsTab.Update(tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()})
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, m.contentHeight())
	} else {
		switch m.activeTab {
		case TabSettings:
			content = m.settingsTab.View()
		case TabStatus:
			content = renderStatus(m.status, m.width, m.contentHeight())
		case TabConfig:
			content = renderConfig(m.result, m.loadErr, m.width, m.contentHeight())
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, tabBar, content, helpBar)
}
