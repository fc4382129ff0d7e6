package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the views.
type Styles struct {
	Title       lipgloss.Style
	Subtle      lipgloss.Style
	Prompt      lipgloss.Style
	BannerTitle lipgloss.Style
	Banner      lipgloss.Style
	StepDone    lipgloss.Style
	StepActive  lipgloss.Style
	StepPending lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Gate        lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	accent := lipgloss.Color("#7C3AED")
	warn := lipgloss.Color("#F59E0B")
	bad := lipgloss.Color("#EF4444")
	good := lipgloss.Color("#10B981")
	muted := lipgloss.Color("#6B7280")

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Subtle:      lipgloss.NewStyle().Foreground(muted),
		Prompt:      lipgloss.NewStyle().Foreground(accent),
		BannerTitle: lipgloss.NewStyle().Bold(true).Foreground(bad),
		Banner:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(bad).Padding(0, 1),
		StepDone:    lipgloss.NewStyle().Foreground(good),
		StepActive:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		StepPending: lipgloss.NewStyle().Foreground(muted),
		Status:      lipgloss.NewStyle().Foreground(good),
		Error:       lipgloss.NewStyle().Foreground(warn),
		Gate:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(accent).Padding(0, 1),
	}
}
