package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary  = lipgloss.Color("#7D56F4")
	Accent   = lipgloss.Color("#FFD166")
	Success  = lipgloss.Color("#06D6A0")
	ErrorCol = lipgloss.Color("#EF476F")
	Text     = lipgloss.Color("#FFFFFF")
	Muted    = lipgloss.Color("#888888")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(1, 1).
			MarginLeft(1)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(2).
			MarginBottom(1)

	CardStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Muted).
			MarginLeft(2).
			Width(64)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Width(12)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true).
				Width(12)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorCol)

	SuccessTextStyle = lipgloss.NewStyle().
				Foreground(Success).
				Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1).
			PaddingLeft(4).
			Faint(true)
)
