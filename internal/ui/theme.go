package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/fileops/internal/config"
	"github.com/bamsammich/fileops/internal/stats"
)

// Catppuccin Mocha palette, mutable so config can override.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorBright = lipgloss.Color("#cdd6f4")
)

// Pre-built styles, rebuilt by rebuildStyles after color changes.
var (
	styleIconDone     lipgloss.Style
	styleIconFailed   lipgloss.Style
	styleIconCanceled lipgloss.Style
	styleLabel        lipgloss.Style
	styleValue        lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	styleIconDone = lipgloss.NewStyle().Foreground(ColorGreen)
	styleIconFailed = lipgloss.NewStyle().Foreground(ColorRed)
	styleIconCanceled = lipgloss.NewStyle().Foreground(ColorYellow)
	styleLabel = lipgloss.NewStyle().Foreground(ColorMuted)
	styleValue = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
}

// ApplyTheme overrides colors from a config ThemeConfig and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	if tc.Green != nil {
		ColorGreen = lipgloss.Color(*tc.Green)
	}
	if tc.Red != nil {
		ColorRed = lipgloss.Color(*tc.Red)
	}
	if tc.Yellow != nil {
		ColorYellow = lipgloss.Color(*tc.Yellow)
	}
	if tc.Muted != nil {
		ColorMuted = lipgloss.Color(*tc.Muted)
	}
	if tc.Bright != nil {
		ColorBright = lipgloss.Color(*tc.Bright)
	}
	rebuildStyles()
}

// StyledSummary is CompletionSummary rendered with the theme colors, for
// terminals.
func StyledSummary(snap stats.Snapshot) string {
	icon := styleIconDone.Render("✓")
	switch {
	case snap.FilesFailed > 0 || snap.FilesVerifyFailed > 0:
		icon = styleIconFailed.Render("✗")
	case snap.FilesCanceled > 0:
		icon = styleIconCanceled.Render("–")
	}
	return styleValue.Render(summaryLine(snap, icon, func(s string) string { return styleLabel.Render(s) }))
}
