package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazysearch/internal/config"
	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/rebeliceyang/lazysearch/internal/history"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/rebeliceyang/lazysearch/internal/saved"
	"github.com/rebeliceyang/lazysearch/internal/search"
	"github.com/rebeliceyang/lazysearch/internal/ui/components"
	"github.com/rebeliceyang/lazysearch/internal/ui/help"
	"github.com/rebeliceyang/lazysearch/internal/ui/theme"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Searcher runs a query against the configured index
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Page, error)
}

// Deps holds the services the TUI works with. Any of them may be nil.
type Deps struct {
	Saved    *saved.Manager
	History  *history.Store
	Searcher Searcher
	Logger   *zap.Logger
}

// App is the main application model
type App struct {
	state      models.AppState
	config     *config.Config
	theme      theme.Theme
	leftPanel  components.Panel
	rightPanel components.Panel

	builder   *components.FilterBuilder
	savedList *components.SavedList

	saved    *saved.Manager
	history  *history.Store
	searcher Searcher
	logger   *zap.Logger

	// Error overlay
	showError    bool
	errorTitle   string
	errorMessage string

	status string
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// SearchResultMsg carries the outcome of a search run for an applied filter
type SearchResultMsg struct {
	Expression string
	Page       *search.Page
	Err        error
}

// New creates a new App instance with config
func New(cfg *config.Config, deps Deps) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	state := models.NewAppState()
	th := theme.GetTheme(cfg.UI.Theme)
	if cfg.UI.PanelWidthRatio > 0 && cfg.UI.PanelWidthRatio < 100 {
		state.LeftPanelWidth = cfg.UI.PanelWidthRatio
	}
	state.Service = cfg.ServiceConfig()
	state.FocusedPanel = models.RightPanel

	builder := components.NewFilterBuilder(th, models.LogicalOperator(cfg.General.DefaultLogic))
	builder.SetFields(cfg.FieldInfos())

	a := &App{
		state:      state,
		config:     cfg,
		theme:      th,
		builder:    builder,
		savedList:  components.NewSavedList(th),
		saved:      deps.Saved,
		history:    deps.History,
		searcher:   deps.Searcher,
		logger:     deps.Logger,
		leftPanel:  components.Panel{Title: "Saved Filters"},
		rightPanel: components.Panel{Title: "Builder", Focused: true},
	}
	a.refreshSaved()
	a.updatePanelDimensions()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case components.ApplyFilterMsg:
		return a, a.applyFilter(msg.Expression, msg.Result, "tui")

	case components.SaveFilterMsg:
		a.saveFilter(msg)
		return a, nil

	case components.LoadSavedFilterMsg:
		if a.saved != nil {
			if err := a.saved.RecordUsage(msg.Filter.ID); err != nil {
				a.logger.Warn("failed to record saved filter usage", zap.Error(err))
			}
		}
		a.refreshSaved()
		return a, a.applyFilter(msg.Filter.Expression, filter.Validate(msg.Filter.Expression), "saved")

	case components.DeleteSavedFilterMsg:
		if a.saved == nil {
			return a, nil
		}
		if err := a.saved.Delete(msg.ID); err != nil {
			a.ShowError("Delete Failed", err.Error())
			return a, nil
		}
		a.refreshSaved()
		a.status = "Saved filter deleted"
		return a, nil

	case components.CopySavedFilterMsg:
		if err := clipboard.WriteAll(msg.Expression); err != nil {
			a.ShowError("Copy Failed", err.Error())
			return a, nil
		}
		a.status = "Copied to clipboard"
		return a, nil

	case SearchResultMsg:
		if msg.Err != nil {
			a.ShowError("Search Failed", msg.Err.Error())
			return a, nil
		}
		summary := search.AnalyzeScores(msg.Page.Results)
		a.status = fmt.Sprintf("%d results (total %d), score %.2f-%.2f mean %.2f",
			summary.Count, msg.Page.Count, summary.Min, summary.Max, summary.Mean)
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showError {
		switch msg.String() {
		case "esc", "enter":
			a.DismissError()
		case "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.state.ViewMode == models.HelpMode {
		switch msg.String() {
		case "?", "esc", "q":
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	}

	// Inputs own every key while they are active
	editing := a.builder.Editing() || a.savedList.Searching()
	if !editing {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?":
			a.state.ViewMode = models.HelpMode
			return a, nil
		case "tab":
			a.toggleFocus()
			return a, nil
		}
	}

	var cmd tea.Cmd
	if a.state.FocusedPanel == models.LeftPanel {
		a.savedList, cmd = a.savedList.Update(msg)
	} else {
		a.builder, cmd = a.builder.Update(msg)
	}
	return a, cmd
}

// applyFilter records the expression and, when a search service is
// configured, runs it against the index
func (a *App) applyFilter(expr string, result models.ValidationResult, source string) tea.Cmd {
	if a.config.General.OptimizeOnApply {
		expr = filter.Optimize(expr)
	}
	a.state.CurrentExpr = expr

	if a.history != nil && a.config.History.Enabled {
		if err := a.history.Add(history.NewEntry(expr, a.state.Service.IndexName, source, result)); err != nil {
			a.logger.Warn("failed to record history", zap.Error(err))
		} else if err := a.history.Prune(a.config.History.MaxEntries); err != nil {
			a.logger.Warn("failed to prune history", zap.Error(err))
		}
	}

	if !result.IsValid {
		a.ShowError("Invalid Filter", joinLines(result.Issues))
		return nil
	}
	if a.config.General.RejectWithWarning && len(result.Warnings) > 0 {
		a.ShowError("Filter Has Warnings", joinLines(result.Warnings))
		return nil
	}

	if a.searcher == nil {
		a.status = "Applied (no search service configured)"
		return nil
	}

	a.status = "Searching..."
	searcher, top := a.searcher, a.config.Search.Top
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.RequestTimeout())
		defer cancel()
		page, err := searcher.Search(ctx, search.Query{Filter: expr, Top: top, Count: true})
		return SearchResultMsg{Expression: expr, Page: page, Err: err}
	}
}

func (a *App) saveFilter(msg components.SaveFilterMsg) {
	if a.saved == nil {
		a.ShowError("Save Failed", "saved filters are not available")
		return
	}
	if _, err := a.saved.Add(msg.Name, "", msg.Expression, a.state.Service.IndexName, nil); err != nil {
		a.ShowError("Save Failed", err.Error())
		return
	}
	a.refreshSaved()
	a.status = fmt.Sprintf("Saved %q", msg.Name)
}

func (a *App) refreshSaved() {
	if a.saved != nil {
		a.savedList.SetFilters(a.saved.List())
	}
}

func (a *App) toggleFocus() {
	if a.state.FocusedPanel == models.LeftPanel {
		a.state.FocusedPanel = models.RightPanel
	} else {
		a.state.FocusedPanel = models.LeftPanel
	}
	a.leftPanel.Focused = a.state.FocusedPanel == models.LeftPanel
	a.rightPanel.Focused = a.state.FocusedPanel == models.RightPanel
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.renderError(),
		)
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return a.renderNormalView()
}

func (a *App) renderNormalView() string {
	index := a.state.Service.IndexName
	if index == "" {
		index = "no index"
	}
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar("lazysearch", index))

	bottomLeft := "[tab] Switch panel | [?] Help | [q] Quit"
	if a.status != "" {
		bottomLeft = a.status
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomLeft, a.state.CurrentExpr))

	a.savedList.Width = a.leftPanel.Width
	a.savedList.Height = a.leftPanel.Height - 1
	a.leftPanel.Content = a.savedList.View()

	a.builder.Width = a.rightPanel.Width - 2
	a.builder.Height = a.rightPanel.Height - 3
	a.rightPanel.Content = a.builder.View()

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.leftPanel.View(a.theme),
		a.rightPanel.View(a.theme),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topBar, panels, bottomBar)
}

func (a *App) renderError() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(a.theme.Error).Render(a.errorTitle)
	hint := lipgloss.NewStyle().Faint(true).Render("Press Esc or Enter to dismiss")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.Error).
		Padding(1, 2).
		Width(min(max(a.state.Width-10, 20), 70)).
		Render(title + "\n\n" + a.errorMessage + "\n\n" + hint)
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top and bottom bars plus panel borders
	contentHeight := max(a.state.Height-4, 5)

	leftWidth := max((a.state.Width*a.state.LeftPanelWidth)/100, 20)
	rightWidth := a.state.Width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = max(a.state.Width-rightWidth-4, 1)
	}

	a.leftPanel.Width = leftWidth
	a.leftPanel.Height = contentHeight
	a.rightPanel.Width = rightWidth
	a.rightPanel.Height = contentHeight
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	available := max(a.state.Width-4, 0)

	rightWidth := runewidth.StringWidth(right)
	if rightWidth > available/2 {
		right = runewidth.Truncate(right, available/2, "…")
		rightWidth = runewidth.StringWidth(right)
	}
	left = runewidth.Truncate(left, max(available-rightWidth-1, 0), "…")

	spacing := max(available-runewidth.StringWidth(left)-rightWidth, 0)
	return left + runewidth.FillRight("", spacing) + right
}

// ShowError displays an error overlay
func (a *App) ShowError(title, message string) {
	a.showError = true
	a.errorTitle = title
	a.errorMessage = message
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
	a.errorTitle = ""
	a.errorMessage = ""
}

// Status returns the status bar message
func (a *App) Status() string {
	return a.status
}

// CurrentExpression returns the last applied expression
func (a *App) CurrentExpression() string {
	return a.state.CurrentExpr
}

// ErrorShown reports whether the error overlay is visible
func (a *App) ErrorShown() bool {
	return a.showError
}

func joinLines(lines []string) string {
	return strings.Join(lo.Map(lines, func(l string, _ int) string { return "• " + l }), "\n")
}
