package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	Accent      lipgloss.AdaptiveColor
	Success     lipgloss.AdaptiveColor
	Error       lipgloss.AdaptiveColor
	Border      lipgloss.AdaptiveColor

	Title      lipgloss.Style
	Pane       lipgloss.Style
	InputBox   lipgloss.Style
	Footer     lipgloss.Style
	ErrorText  lipgloss.Style
	MutedText  lipgloss.Style
	PromptChip lipgloss.Style
	RoleYou    lipgloss.Style
	RoleBot    lipgloss.Style
	Pending    lipgloss.Style
	Sidebar    lipgloss.Style
}

func NewTheme() Theme {
	if os.Getenv("DOCCHAT_NO_COLOR") == "1" {
		return newNoColorTheme()
	}

	t := Theme{
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#F8FAFC"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#94A3B8"},
		Accent:      lipgloss.AdaptiveColor{Light: "#D35400", Dark: "#D35400"},
		Success:     lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"},
		Error:       lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"},
		Border:      lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#334155"},
	}

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.ErrorText = lipgloss.NewStyle().Foreground(t.Error)
	t.MutedText = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.PromptChip = lipgloss.NewStyle().Foreground(t.Accent).Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"})
	t.RoleBot = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.Pending = lipgloss.NewStyle().Italic(true).Foreground(t.TextMuted)
	t.Sidebar = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(t.Border).Padding(0, 1)
	return t
}

func newNoColorTheme() Theme {
	t := Theme{}
	plain := lipgloss.NewStyle()
	t.Title = plain.Bold(true)
	t.Pane = plain.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	t.InputBox = plain.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	t.Footer = plain
	t.ErrorText = plain
	t.MutedText = plain
	t.PromptChip = plain.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	t.RoleYou = plain.Bold(true)
	t.RoleBot = plain.Bold(true)
	t.Pending = plain.Italic(true)
	t.Sidebar = plain.Border(lipgloss.NormalBorder(), false, true, false, false).Padding(0, 1)
	return t
}
