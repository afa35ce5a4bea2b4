// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/fusion-energy/devsetup/internal/config"
	"github.com/fusion-energy/devsetup/internal/menu"

	"github.com/charmbracelet/lipgloss"
)

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple - titles and the menu border.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - subtitles, skipped actions and hints.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - completed actions.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - fatal errors.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - tolerated failures.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - selectors, commands and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for selectors, command lines and paths.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	menuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

// menuTheme builds the menu's styles from the palette.
func menuTheme() menu.Theme {
	return menu.Theme{
		Box:      menuBoxStyle,
		Title:    TitleStyle,
		Selector: CmdStyle.Bold(true),
		Label:    lipgloss.NewStyle(),
		Prompt:   SubtitleStyle,
		Success:  SuccessStyle,
		Warning:  WarningStyle,
		Error:    ErrorStyle,
		Muted:    SubtitleStyle,
	}
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if lipgloss.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}
