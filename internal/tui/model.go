// Package tui renders the live notification feed for `pulse notify watch`.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/styrcan/pulse/internal/realtime"
)

// maxFeedEntries bounds the in-memory notification feed.
const maxFeedEntries = 50

// Model represents the notification watch TUI state.
type Model struct {
	// Channel state
	endpoint      string
	state         realtime.State
	attempts      int
	lastError     string
	notifications []realtime.Notification

	// UI state
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	quitting bool

	styles Styles
}

// NewModel creates a watch model for the given notification endpoint.
func NewModel(endpoint string) Model {
	styles := DefaultStyles()
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Status),
	)
	return Model{
		endpoint: endpoint,
		state:    realtime.StateDisconnected,
		spinner:  sp,
		styles:   styles,
	}
}

// StateMsg reports a connection state transition.
type StateMsg struct {
	State    realtime.State
	Attempts int
}

// NotificationMsg carries one received notification.
type NotificationMsg struct {
	Notification realtime.Notification
}

// ChannelErrorMsg surfaces a channel error without quitting the feed.
type ChannelErrorMsg struct {
	Err error
}

// Init starts the spinner (required by Bubble Tea).
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state (required by Bubble Tea).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case StateMsg:
		m.state = msg.State
		m.attempts = msg.Attempts
		if msg.State == realtime.StateConnected {
			m.lastError = ""
		}
		return m, nil

	case NotificationMsg:
		// Newest first, bounded.
		m.notifications = append([]realtime.Notification{msg.Notification}, m.notifications...)
		if len(m.notifications) > maxFeedEntries {
			m.notifications = m.notifications[:maxFeedEntries]
		}
		return m, nil

	case ChannelErrorMsg:
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the feed (required by Bubble Tea).
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}
	if m.quitting {
		return m.renderFarewell()
	}
	return m.renderFeed()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "c":
		m.notifications = nil
	}
	return m, nil
}

func (m Model) stateLabel() string {
	switch m.state {
	case realtime.StateConnected:
		return m.styles.Success.Render("● connected")
	case realtime.StateConnecting:
		return m.styles.Warning.Render(m.spinner.View() + "connecting")
	default:
		return m.styles.Error.Render("○ disconnected")
	}
}

func formatReceivedAt(at time.Time) string {
	return at.Format("15:04:05")
}
