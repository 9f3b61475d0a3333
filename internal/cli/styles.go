// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	AccentColor = lipgloss.Color("#4E79A7")
	GoodColor   = lipgloss.Color("#59A14F")
	AlertColor  = lipgloss.Color("#F28E2B")
	BadColor    = lipgloss.Color("#E15759")
	NoteColor   = lipgloss.Color("#76B7B2")
	RuleColor   = lipgloss.Color("#333")
)

var (
	// TitleStyle renders section headings above result tables.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor).MarginBottom(1)

	// BoxStyle frames the export listing.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(RuleColor).
			Padding(1, 2)

	// TableHeaderStyle underlines the header row of a result table.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(RuleColor)

	// TableCellStyle pads result cells.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
	FolderIcon  = "🗄️"
)

func status(color lipgloss.Color, icon, message string) string {
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + message)
}

// FormatSuccess marks a finished run.
func FormatSuccess(message string) string { return status(GoodColor, SuccessIcon, message) }

// FormatError marks a fatal error.
func FormatError(message string) string { return status(BadColor, ErrorIcon, message) }

// FormatWarning marks a non-fatal problem.
func FormatWarning(message string) string { return status(AlertColor, WarningIcon, message) }

// FormatInfo marks a hint.
func FormatInfo(message string) string { return status(NoteColor, InfoIcon, message) }

// FormatTitle renders a section heading with the chart icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ChartIcon + " " + title)
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
