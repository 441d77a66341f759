package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors keep output readable on light and dark terminals.
var (
	accent = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	subtle = lipgloss.AdaptiveColor{Light: "244", Dark: "245"}
	faint  = lipgloss.AdaptiveColor{Light: "249", Dark: "240"}
	green  = lipgloss.AdaptiveColor{Light: "28", Dark: "34"}
	amber  = lipgloss.AdaptiveColor{Light: "166", Dark: "214"}
	red    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	LabelStyle   = lipgloss.NewStyle().Foreground(subtle)
	HelpStyle    = lipgloss.NewStyle().Foreground(faint)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	WarningStyle = lipgloss.NewStyle().Foreground(amber)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
)

const (
	SymbolCheck      = "✓"
	SymbolCross      = "✗"
	SymbolArrowRight = "→"
	SymbolBullet     = "•"
)
