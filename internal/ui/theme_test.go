package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/fileops/internal/config"
	"github.com/bamsammich/fileops/internal/stats"
)

func TestApplyTheme(t *testing.T) {
	saved := ColorGreen
	t.Cleanup(func() {
		ColorGreen = saved
		rebuildStyles()
	})

	green := "#00ff00"
	ApplyTheme(config.ThemeConfig{Green: &green})
	assert.Equal(t, lipgloss.Color("#00ff00"), ColorGreen)
	assert.Equal(t, lipgloss.Color("#f38ba8"), ColorRed, "unset colors keep the default")
}

func TestStyledSummaryContent(t *testing.T) {
	s := StyledSummary(stats.Snapshot{FilesTransferred: 7, FilesFailed: 1})
	assert.Contains(t, s, "✗")
	assert.Contains(t, s, "7")
	assert.Contains(t, s, "errors")

	s = StyledSummary(stats.Snapshot{FilesCanceled: 1})
	assert.Contains(t, s, "–")
}
