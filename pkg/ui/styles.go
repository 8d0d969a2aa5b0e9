package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary = lipgloss.Color("#7D56F4")
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
)

// Pre-configured styles
var (
	TagStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	FailTextStyle = lipgloss.NewStyle().Foreground(Error)
	WarnTextStyle = lipgloss.NewStyle().Foreground(Warning)

	MutedStyle = lipgloss.NewStyle().Foreground(Muted)

	LabelStyle = lipgloss.NewStyle().Bold(true)
)
