// Package ui renders the memory model for terminals.
//
// Everything here is presentation: the functions read pages, processes and
// RAM and return styled strings. They never mutate the model.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"memsim/pkg/ui/base"
)

// Color palette - shared by memsim and memview
var (
	PrimaryColor   = base.AdaptivePrimary
	SecondaryColor = base.AdaptiveSecondary
	AccentColor    = base.AdaptiveAccent
	SuccessColor   = base.AdaptiveSuccess
	WarningColor   = base.AdaptiveWarning
	ErrorColor     = base.AdaptiveError
	MutedColor     = base.AdaptiveMuted
	PayloadColor   = base.AdaptivePayload
	FgColor        = lipgloss.AdaptiveColor{Light: "#1E1E2E", Dark: "#CDD6F4"}
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(PrimaryColor).
				Bold(true).
				Padding(0, 1)

	ItemStyle = lipgloss.NewStyle().
			Foreground(FgColor).
			Padding(0, 1)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	ProcessBoxStyle = BoxStyle.
			BorderForeground(ErrorColor)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(FgColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			MarginTop(1).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(PrimaryColor).
			Padding(0, 1).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Padding(0, 1)
)

// Byte cell styles used by the hex grids.
var (
	zeroByteStyle     = lipgloss.NewStyle().Foreground(MutedColor).Bold(true)
	payloadByteStyle  = lipgloss.NewStyle().Foreground(PayloadColor).Bold(true)
	selectedByteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(AccentColor).Bold(true)
	processByteStyle  = lipgloss.NewStyle().Foreground(ErrorColor)
)
