package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/rebeliceyang/lazysearch/internal/ui/theme"
)

// ApplyFilterMsg is sent when the current expression should be applied
type ApplyFilterMsg struct {
	Expression string
	Result     models.ValidationResult
}

// SaveFilterMsg is sent when the current expression should be saved
type SaveFilterMsg struct {
	Name       string
	Expression string
}

const defaultFieldType = "Edm.String"

// FilterBuilder provides an interactive UI for building filter expressions
type FilterBuilder struct {
	Width   int
	Height  int
	Theme   theme.Theme
	builder *filter.Builder

	// State
	fields        []models.FieldInfo
	conditions    []models.FilterCondition
	logic         models.LogicalOperator
	currentIndex  int
	editMode      string // "", "field", "operator", "value", "name"
	input         textinput.Model
	operatorIndex int
	collectionFn  models.CollectionFunction

	selectedField models.FieldInfo
	availableOps  []models.Operator

	expression    string
	renderErr     string
	result        models.ValidationResult
	optimized     string
	showOptimized bool
	status        string
	errMsg        string

	copyFn func(string) error
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder(th theme.Theme, logic models.LogicalOperator) *FilterBuilder {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	if logic != models.LogicOr {
		logic = models.LogicAnd
	}

	fb := &FilterBuilder{
		Width:   80,
		Height:  30,
		Theme:   th,
		builder: filter.NewBuilder(),
		logic:   logic,
		input:   ti,
		copyFn:  clipboard.WriteAll,
	}
	fb.recompute()
	return fb
}

// SetFields sets the known index fields used for operator selection
func (fb *FilterBuilder) SetFields(fields []models.FieldInfo) {
	fb.fields = fields
}

// SetClipboard replaces the clipboard writer
func (fb *FilterBuilder) SetClipboard(fn func(string) error) {
	fb.copyFn = fn
}

// Expression returns the rendered expression for the current conditions
func (fb *FilterBuilder) Expression() string {
	return fb.expression
}

// Validation returns the validation result of the current expression
func (fb *FilterBuilder) Validation() models.ValidationResult {
	return fb.result
}

// Logic returns the logical operator joining the conditions
func (fb *FilterBuilder) Logic() models.LogicalOperator {
	return fb.logic
}

// Editing reports whether an input field is active
func (fb *FilterBuilder) Editing() bool {
	return fb.editMode != ""
}

// Status returns the last status message
func (fb *FilterBuilder) Status() string {
	return fb.status
}

// ErrorMessage returns the last error message
func (fb *FilterBuilder) ErrorMessage() string {
	return fb.errMsg
}

// Update handles keyboard input
func (fb *FilterBuilder) Update(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch fb.editMode {
	case "":
		return fb.handleNavigationMode(msg)
	case "field":
		return fb.handleFieldMode(msg)
	case "operator":
		return fb.handleOperatorMode(msg)
	case "value":
		return fb.handleValueMode(msg)
	case "name":
		return fb.handleNameMode(msg)
	}
	return fb, nil
}

func (fb *FilterBuilder) handleNavigationMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	fb.status = ""
	switch msg.String() {
	case "up", "k":
		if fb.currentIndex > 0 {
			fb.currentIndex--
		}
	case "down", "j":
		if fb.currentIndex < len(fb.conditions)-1 {
			fb.currentIndex++
		}
	case "a", "n":
		fb.startInput("field", "field name or name:Edm.Type")
	case "d", "x":
		if fb.currentIndex < len(fb.conditions) {
			fb.conditions = append(fb.conditions[:fb.currentIndex], fb.conditions[fb.currentIndex+1:]...)
			if fb.currentIndex > 0 && fb.currentIndex >= len(fb.conditions) {
				fb.currentIndex--
			}
			fb.recompute()
		}
	case "l":
		if fb.logic == models.LogicAnd {
			fb.logic = models.LogicOr
		} else {
			fb.logic = models.LogicAnd
		}
		fb.recompute()
	case "o":
		fb.showOptimized = !fb.showOptimized
	case "y":
		if fb.expression == "" {
			fb.errMsg = "Nothing to copy"
			return fb, nil
		}
		if err := fb.copyFn(fb.expression); err != nil {
			fb.errMsg = fmt.Sprintf("Copy failed: %v", err)
			return fb, nil
		}
		fb.errMsg = ""
		fb.status = "Copied to clipboard"
	case "s":
		if fb.expression == "" {
			fb.errMsg = "Add at least one condition before saving"
			return fb, nil
		}
		fb.startInput("name", "saved filter name")
	case "ctrl+r":
		fb.conditions = nil
		fb.currentIndex = 0
		fb.recompute()
	case "enter":
		if fb.expression == "" {
			fb.errMsg = "Add at least one condition before applying filter"
			return fb, nil
		}
		fb.errMsg = ""
		expr, result := fb.expression, fb.result
		return fb, func() tea.Msg {
			return ApplyFilterMsg{Expression: expr, Result: result}
		}
	}
	return fb, nil
}

func (fb *FilterBuilder) handleFieldMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.stopInput()
		return fb, nil
	case "enter":
		field, ok := fb.resolveField(fb.input.Value())
		if !ok {
			fb.errMsg = "Field name is required"
			return fb, nil
		}
		fb.selectedField = field
		fb.availableOps = filter.GetOperatorsForType(field.Type)
		fb.operatorIndex = 0
		fb.collectionFn = models.CollectionNone
		if filter.IsCollectionType(field.Type) {
			fb.collectionFn = models.CollectionAny
		}
		fb.errMsg = ""
		fb.editMode = "operator"
		fb.input.Blur()
		return fb, nil
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) handleOperatorMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.startInput("field", "field name or name:Edm.Type")
		fb.input.SetValue(fb.selectedField.Name)
	case "up", "k":
		if fb.operatorIndex > 0 {
			fb.operatorIndex--
		}
	case "down", "j":
		if fb.operatorIndex < len(fb.availableOps)-1 {
			fb.operatorIndex++
		}
	case "tab":
		switch fb.collectionFn {
		case models.CollectionAny:
			fb.collectionFn = models.CollectionAll
		case models.CollectionAll:
			fb.collectionFn = models.CollectionAny
		}
	case "enter":
		fb.startInput("value", "value (null for none)")
	}
	return fb, nil
}

func (fb *FilterBuilder) handleValueMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.stopInput()
		fb.editMode = "operator"
		return fb, nil
	case "enter":
		value, err := filter.ParseValue(fb.selectedField.Type, fb.input.Value())
		if err != nil {
			fb.errMsg = err.Error()
			return fb, nil
		}

		cond := models.FilterCondition{
			Field:              fb.selectedField.Name,
			Operator:           fb.availableOps[fb.operatorIndex],
			Value:              value,
			CollectionFunction: fb.collectionFn,
		}
		if _, err := fb.builder.RenderCondition(cond); err != nil {
			fb.errMsg = err.Error()
			return fb, nil
		}

		fb.conditions = append(fb.conditions, cond)
		fb.currentIndex = len(fb.conditions) - 1
		fb.stopInput()
		fb.recompute()
		return fb, nil
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) handleNameMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.stopInput()
		return fb, nil
	case "enter":
		name := strings.TrimSpace(fb.input.Value())
		if name == "" {
			fb.errMsg = "Name is required"
			return fb, nil
		}
		fb.stopInput()
		expr := fb.expression
		return fb, func() tea.Msg {
			return SaveFilterMsg{Name: name, Expression: expr}
		}
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) startInput(mode, placeholder string) {
	fb.editMode = mode
	fb.errMsg = ""
	fb.input.Reset()
	fb.input.Placeholder = placeholder
	fb.input.Focus()
}

func (fb *FilterBuilder) stopInput() {
	fb.editMode = ""
	fb.errMsg = ""
	fb.input.Reset()
	fb.input.Blur()
}

// resolveField matches raw against the known fields. Unknown names may carry
// an explicit type as "name:Edm.Type" and otherwise default to Edm.String.
func (fb *FilterBuilder) resolveField(raw string) (models.FieldInfo, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.FieldInfo{}, false
	}
	for _, f := range fb.fields {
		if strings.EqualFold(f.Name, raw) {
			return f, true
		}
	}

	name, edmType, found := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !found || strings.TrimSpace(edmType) == "" {
		edmType = defaultFieldType
	}
	if name == "" {
		return models.FieldInfo{}, false
	}
	return models.FieldInfo{Name: name, Type: strings.TrimSpace(edmType)}, true
}

// recompute renders, validates and optimizes the current conditions
func (fb *FilterBuilder) recompute() {
	fb.expression, fb.renderErr, fb.optimized = "", "", ""
	fb.result = filter.Validate("")
	if len(fb.conditions) == 0 {
		return
	}

	nodes := make([]models.Node, 0, len(fb.conditions))
	for _, c := range fb.conditions {
		nodes = append(nodes, c)
	}

	expr, err := fb.builder.RenderGroup(models.FilterGroup{Conditions: nodes, Logic: fb.logic})
	if err != nil {
		fb.renderErr = err.Error()
		return
	}
	fb.expression = expr
	fb.result = filter.Validate(expr)
	fb.optimized = filter.Optimize(expr)
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string
	inner := fb.Width - 4
	if inner < 10 {
		inner = 10
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Foreground).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("Filter Builder [%s]", fb.logic)))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Muted).
		Padding(0, 1)

	var instructions string
	switch fb.editMode {
	case "field":
		instructions = "Type field name, Enter to confirm, Esc to cancel"
	case "operator":
		instructions = "↑↓ Select operator, Tab any/all, Enter to confirm, Esc to go back"
	case "value":
		instructions = "Type value, Enter to confirm, Esc to go back"
	case "name":
		instructions = "Type a name, Enter to save, Esc to cancel"
	default:
		instructions = "a=Add d=Delete l=And/Or o=Optimize y=Copy s=Save Enter=Apply"
	}
	sections = append(sections, instructionStyle.Render(instructions))

	if fb.errMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+fb.errMsg))
	}
	if fb.status != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(fb.Theme.Success).Padding(0, 1).Render(fb.status))
	}

	if len(fb.conditions) > 0 {
		sections = append(sections, "\nConditions:")
		for i, cond := range fb.conditions {
			rendered, err := fb.builder.RenderCondition(cond)
			if err != nil {
				rendered = err.Error()
			}

			style := lipgloss.NewStyle().Padding(0, 1)
			if i == fb.currentIndex && fb.editMode == "" {
				style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
			}
			line := runewidth.Truncate(fmt.Sprintf(" %d. %s", i+1, rendered), inner, "…")
			sections = append(sections, style.Render(line))
		}
	}

	if fb.editMode != "" {
		sections = append(sections, "")
		switch fb.editMode {
		case "field", "name":
			sections = append(sections, fb.input.View())
		case "operator":
			header := fmt.Sprintf("Field: %s (%s)", fb.selectedField.Name, fb.selectedField.Type)
			if fb.collectionFn != models.CollectionNone {
				header += fmt.Sprintf(" using %s", fb.collectionFn)
			}
			sections = append(sections, header, "Select operator:")
			for i, op := range fb.availableOps {
				style := lipgloss.NewStyle().Padding(0, 1)
				if i == fb.operatorIndex {
					style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
				}
				label := fb.builder.Grammar().Describe(op)
				sections = append(sections, style.Render(fmt.Sprintf("  %-10s %s", op, label)))
			}
		case "value":
			sections = append(sections,
				fmt.Sprintf("Field: %s %s", fb.selectedField.Name, fb.availableOps[fb.operatorIndex]),
				fb.input.View(),
			)
		}
	}

	sections = append(sections, fb.renderPreview(inner)...)

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fb.Theme.Border).
		Foreground(fb.Theme.Foreground).
		Width(fb.Width).
		Height(fb.Height).
		Padding(0, 1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}

func (fb *FilterBuilder) renderPreview(width int) []string {
	if fb.renderErr != "" {
		return []string{"", lipgloss.NewStyle().Foreground(fb.Theme.Error).Render("Error: " + fb.renderErr)}
	}
	if fb.expression == "" {
		return nil
	}

	out := []string{"", "Preview:", Highlight(fb.expression, fb.Theme.SyntaxStyle)}
	if fb.showOptimized {
		out = append(out, "Optimized:", Highlight(fb.optimized, fb.Theme.SyntaxStyle))
	}

	out = append(out, "")
	out = append(out, fb.renderValidation(width)...)
	return out
}

func (fb *FilterBuilder) renderValidation(width int) []string {
	okStyle := lipgloss.NewStyle().Foreground(fb.Theme.Success)
	errStyle := lipgloss.NewStyle().Foreground(fb.Theme.Error)
	warnStyle := lipgloss.NewStyle().Foreground(fb.Theme.Warning)

	var out []string
	if fb.result.IsValid {
		out = append(out, okStyle.Render(fmt.Sprintf("✓ valid, complexity %d", fb.result.ComplexityScore)))
	} else {
		out = append(out, errStyle.Render(fmt.Sprintf("✗ invalid, complexity %d", fb.result.ComplexityScore)))
	}
	for _, issue := range fb.result.Issues {
		out = append(out, errStyle.Render(runewidth.Truncate("  "+issue, width, "…")))
	}
	for _, w := range fb.result.Warnings {
		out = append(out, warnStyle.Render(runewidth.Truncate("  "+w, width, "…")))
	}
	return out
}
