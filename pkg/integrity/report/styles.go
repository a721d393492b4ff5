package report

import "github.com/charmbracelet/lipgloss"

// Color constants using the ANSI 256-color palette, shared by all
// report output.
const (
	// ColorPrimary is used for paths and headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for the no-changes verdict (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for ordinary changes (orange/yellow).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for suspicious findings (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for counts and secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

var (
	// PathStyle renders directory and file paths.
	PathStyle = lipgloss.NewStyle().Foreground(ColorPrimary)

	// CountStyle renders the per-directory change counters.
	CountStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// SuspiciousStyle renders tampering-like findings.
	SuspiciousStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)

	// NoChangesStyle renders the clean verdict.
	NoChangesStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)

	// ChangesStyle renders the ordinary-drift verdict.
	ChangesStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
)
