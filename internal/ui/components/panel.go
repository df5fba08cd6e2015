package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazysearch/internal/ui/theme"
)

// Panel represents a bordered UI panel
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Focused bool
}

// View renders the panel with a border colored by focus
func (p *Panel) View(th theme.Theme) string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	border := th.Border
	if p.Focused {
		border = th.BorderFocused
	}
	style := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)

	content := p.Content
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(th.Title)
		content = titleStyle.Render(p.Title) + "\n" + content
	}

	return style.Render(content)
}
