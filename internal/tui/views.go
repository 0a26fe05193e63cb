package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/styrcan/pulse/internal/realtime"
)

// Styles contains lipgloss styles for the notification feed.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
	Entry    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Entry: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("63")). // Purple
			PaddingLeft(1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
	}
}

func (m Model) renderFeed() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Pulse Notifications"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(m.endpoint))
	b.WriteString("\n\n")

	b.WriteString(m.stateLabel())
	if m.attempts > 0 && m.state != realtime.StateConnected {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  (attempt %d)", m.attempts)))
	}
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString(m.styles.Error.Render("! " + m.lastError))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.notifications) == 0 {
		b.WriteString(m.styles.Muted.Render("Waiting for notifications..."))
		b.WriteString("\n")
	} else {
		for _, n := range m.visibleNotifications() {
			line := fmt.Sprintf("%s  %s",
				m.styles.Muted.Render(formatReceivedAt(n.ReceivedAt)),
				m.styles.Status.Render(n.Title))
			if n.Message != "" {
				line += "\n" + m.styles.Subtitle.Render(n.Message)
			}
			b.WriteString(m.styles.Entry.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.styles.Help.Render("c clear • q quit"))
	return b.String()
}

func (m Model) renderFarewell() string {
	return m.styles.Muted.Render(
		fmt.Sprintf("Disconnected. %d notification(s) received this session.\n", len(m.notifications)))
}

// visibleNotifications trims the feed to what fits the terminal height,
// keeping room for the header and help line.
func (m Model) visibleNotifications() []realtime.Notification {
	reserved := 8
	visible := len(m.notifications)
	if m.height > reserved {
		if fit := (m.height - reserved) / 2; fit < visible {
			visible = fit
		}
	}
	if visible < 1 {
		visible = 1
	}
	if visible > len(m.notifications) {
		visible = len(m.notifications)
	}
	return m.notifications[:visible]
}
