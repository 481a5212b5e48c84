package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
)

// Color palette, a night sky with one hue per category
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate

	Psychology = lipgloss.Color("#A78BFA") // Lavender
	Health     = lipgloss.Color("#34D399") // Mint
	Skill      = lipgloss.Color("#FBBF24") // Amber
	Star       = lipgloss.Color("#FDE68A") // Pale Gold
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Section = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Success)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// CategoryColor returns the hue used for a category's header and roots.
func CategoryColor(c catalog.Category) lipgloss.Style {
	switch c {
	case catalog.CategoryPsychology:
		return lipgloss.NewStyle().Foreground(Psychology).Bold(true)
	case catalog.CategoryHealth:
		return lipgloss.NewStyle().Foreground(Health).Bold(true)
	case catalog.CategorySkill:
		return lipgloss.NewStyle().Foreground(Skill).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Star).Bold(true)
	}
}

// StatusStyle returns the name and label styles for a node status.
func StatusStyle(s progress.Status) (name, label lipgloss.Style) {
	switch s {
	case progress.StatusMastered:
		return lipgloss.NewStyle().Foreground(Success), lipgloss.NewStyle().Foreground(Success)
	case progress.StatusActive:
		return lipgloss.NewStyle().Foreground(Text).Bold(true), lipgloss.NewStyle().Foreground(Accent)
	case progress.StatusAvailable:
		return lipgloss.NewStyle().Foreground(Text), lipgloss.NewStyle().Foreground(Secondary)
	default:
		return lipgloss.NewStyle().Foreground(TextDim), lipgloss.NewStyle().Foreground(TextDim)
	}
}
