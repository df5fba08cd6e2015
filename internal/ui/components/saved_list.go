package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/rebeliceyang/lazysearch/internal/ui/theme"
	"github.com/samber/lo"
)

// LoadSavedFilterMsg is sent when a saved filter is selected
type LoadSavedFilterMsg struct {
	Filter models.SavedFilter
}

// DeleteSavedFilterMsg is sent when a saved filter should be removed
type DeleteSavedFilterMsg struct {
	ID string
}

// CopySavedFilterMsg is sent when a saved expression should be copied
type CopySavedFilterMsg struct {
	Expression string
}

// SavedList shows saved filters in the side panel
type SavedList struct {
	Width  int
	Height int
	Theme  theme.Theme

	filters   []models.SavedFilter
	selected  int
	offset    int
	searching bool
	search    textinput.Model
}

// NewSavedList creates an empty saved filter list
func NewSavedList(th theme.Theme) *SavedList {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 64
	return &SavedList{Width: 30, Height: 20, Theme: th, search: ti}
}

// SetFilters replaces the listed filters
func (sl *SavedList) SetFilters(filters []models.SavedFilter) {
	sl.filters = filters
	sl.clamp()
}

// Searching reports whether the search box has focus
func (sl *SavedList) Searching() bool {
	return sl.searching
}

// Visible returns the filters matching the current search
func (sl *SavedList) Visible() []models.SavedFilter {
	q := strings.ToLower(strings.TrimSpace(sl.search.Value()))
	if q == "" {
		return sl.filters
	}
	return lo.Filter(sl.filters, func(f models.SavedFilter, _ int) bool {
		return strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Expression), q) ||
			hasTag(f.Tags, q)
	})
}

func hasTag(tags []string, q string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Selected returns the highlighted filter
func (sl *SavedList) Selected() (models.SavedFilter, bool) {
	visible := sl.Visible()
	if sl.selected >= len(visible) {
		return models.SavedFilter{}, false
	}
	return visible[sl.selected], true
}

// Update handles keyboard input
func (sl *SavedList) Update(msg tea.KeyMsg) (*SavedList, tea.Cmd) {
	if sl.searching {
		switch msg.String() {
		case "esc":
			sl.search.Reset()
			sl.searching = false
			sl.search.Blur()
		case "enter":
			sl.searching = false
			sl.search.Blur()
		default:
			var cmd tea.Cmd
			sl.search, cmd = sl.search.Update(msg)
			sl.selected, sl.offset = 0, 0
			return sl, cmd
		}
		sl.clamp()
		return sl, nil
	}

	switch msg.String() {
	case "up", "k":
		if sl.selected > 0 {
			sl.selected--
		}
	case "down", "j":
		if sl.selected < len(sl.Visible())-1 {
			sl.selected++
		}
	case "/":
		sl.searching = true
		return sl, sl.search.Focus()
	case "enter":
		if f, ok := sl.Selected(); ok {
			return sl, func() tea.Msg { return LoadSavedFilterMsg{Filter: f} }
		}
	case "y":
		if f, ok := sl.Selected(); ok {
			return sl, func() tea.Msg { return CopySavedFilterMsg{Expression: f.Expression} }
		}
	case "d", "x":
		if f, ok := sl.Selected(); ok {
			return sl, func() tea.Msg { return DeleteSavedFilterMsg{ID: f.ID} }
		}
	}
	sl.clamp()
	return sl, nil
}

func (sl *SavedList) clamp() {
	n := len(sl.Visible())
	if sl.selected >= n {
		sl.selected = max(n-1, 0)
	}
	visibleHeight := sl.listHeight()
	if sl.selected < sl.offset {
		sl.offset = sl.selected
	}
	if sl.selected >= sl.offset+visibleHeight {
		sl.offset = sl.selected - visibleHeight + 1
	}
}

func (sl *SavedList) listHeight() int {
	return max(sl.Height-2, 1)
}

// View renders the list
func (sl *SavedList) View() string {
	var lines []string
	if sl.searching || sl.search.Value() != "" {
		lines = append(lines, sl.search.View())
	}

	visible := sl.Visible()
	if len(visible) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(sl.Theme.Muted).Render("No saved filters"))
		return strings.Join(lines, "\n")
	}

	width := max(sl.Width-2, 4)
	end := min(sl.offset+sl.listHeight(), len(visible))
	for i := sl.offset; i < end; i++ {
		f := visible[i]
		label := runewidth.Truncate(fmt.Sprintf("%s (%d)", f.Name, f.ComplexityScore), width, "…")
		style := lipgloss.NewStyle()
		if i == sl.selected {
			style = style.Background(sl.Theme.Selection).Foreground(sl.Theme.Foreground).Bold(true)
		}
		lines = append(lines, style.Render(runewidth.FillRight(label, width)))
	}
	return strings.Join(lines, "\n")
}
