// SPDX-License-Identifier: MPL-2.0

package menu

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles the menu renders with.
type Theme struct {
	Box      lipgloss.Style
	Title    lipgloss.Style
	Selector lipgloss.Style
	Label    lipgloss.Style
	Prompt   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
}

// PlainTheme renders without colors or borders.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{
		Box:      s,
		Title:    s,
		Selector: s,
		Label:    s,
		Prompt:   s,
		Success:  s,
		Warning:  s,
		Error:    s,
		Muted:    s,
	}
}
