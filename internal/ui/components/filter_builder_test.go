package components

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/rebeliceyang/lazysearch/internal/ui/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func send(fb *FilterBuilder, msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		fb, cmd = fb.Update(m)
	}
	return cmd
}

// addCondition walks the add flow, choosing the operator at opIndex
func addCondition(fb *FilterBuilder, field string, opIndex int, value string, extra ...tea.KeyMsg) {
	send(fb, runes("a"), runes(field), key(tea.KeyEnter))
	for i := 0; i < opIndex; i++ {
		send(fb, runes("j"))
	}
	send(fb, extra...)
	send(fb, key(tea.KeyEnter), runes(value), key(tea.KeyEnter))
}

func newTestBuilder() *FilterBuilder {
	fb := NewFilterBuilder(theme.DefaultTheme(), models.LogicAnd)
	fb.SetFields([]models.FieldInfo{
		{Name: "rating", Type: "Edm.Double"},
		{Name: "tags", Type: "Collection(Edm.String)"},
		{Name: "category", Type: "Edm.String"},
	})
	return fb
}

func TestFilterBuilderAddConditions(t *testing.T) {
	fb := newTestBuilder()
	assert.Empty(t, fb.Expression())

	// rating ge 4: numeric operators are eq ne gt ge lt le
	addCondition(fb, "rating", 3, "4")
	assert.Equal(t, "rating ge 4", fb.Expression())
	assert.False(t, fb.Editing())

	addCondition(fb, "tags", 0, "premium")
	assert.Equal(t, "rating ge 4 and tags/any(item: item eq 'premium')", fb.Expression())
	assert.True(t, fb.Validation().IsValid)

	send(fb, runes("l"))
	assert.Equal(t, models.LogicOr, fb.Logic())
	assert.Equal(t, "rating ge 4 or tags/any(item: item eq 'premium')", fb.Expression())
}

func TestFilterBuilderCollectionToggle(t *testing.T) {
	fb := newTestBuilder()
	addCondition(fb, "tags", 0, "x", key(tea.KeyTab))
	assert.Equal(t, "tags/all(item: item eq 'x')", fb.Expression())
}

func TestFilterBuilderUnknownFieldWithType(t *testing.T) {
	fb := newTestBuilder()
	addCondition(fb, "stars:Edm.Int32", 0, "5")
	assert.Equal(t, "stars eq 5", fb.Expression())

	addCondition(fb, "city", 2, "Sea")
	assert.Equal(t, "stars eq 5 and contains(city, 'Sea')", fb.Expression())
}

func TestFilterBuilderBadValue(t *testing.T) {
	fb := newTestBuilder()
	addCondition(fb, "rating", 0, "high")
	assert.True(t, fb.Editing())
	assert.Contains(t, fb.ErrorMessage(), "high")
	assert.Empty(t, fb.Expression())

	send(fb, key(tea.KeyEsc), key(tea.KeyEsc))
	assert.Empty(t, fb.Expression())
}

func TestFilterBuilderDeleteAndClear(t *testing.T) {
	fb := newTestBuilder()
	addCondition(fb, "category", 0, "Resort")
	addCondition(fb, "category", 1, "Motel")

	send(fb, runes("k"), runes("d"))
	assert.Equal(t, "category ne 'Motel'", fb.Expression())

	send(fb, key(tea.KeyCtrlR))
	assert.Empty(t, fb.Expression())
}

func TestFilterBuilderApplySaveCopy(t *testing.T) {
	fb := newTestBuilder()

	cmd := send(fb, key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.NotEmpty(t, fb.ErrorMessage())

	addCondition(fb, "category", 0, "Resort")

	cmd = send(fb, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	apply, ok := cmd().(ApplyFilterMsg)
	require.True(t, ok)
	assert.Equal(t, "category eq 'Resort'", apply.Expression)
	assert.True(t, apply.Result.IsValid)

	cmd = send(fb, runes("s"), runes("resorts"), key(tea.KeyEnter))
	require.NotNil(t, cmd)
	save, ok := cmd().(SaveFilterMsg)
	require.True(t, ok)
	assert.Equal(t, "resorts", save.Name)
	assert.Equal(t, "category eq 'Resort'", save.Expression)

	var copied string
	fb.SetClipboard(func(s string) error { copied = s; return nil })
	send(fb, runes("y"))
	assert.Equal(t, "category eq 'Resort'", copied)
	assert.Equal(t, "Copied to clipboard", fb.Status())

	fb.SetClipboard(func(string) error { return errors.New("no clipboard") })
	send(fb, runes("y"))
	assert.Contains(t, fb.ErrorMessage(), "no clipboard")
}

func TestFilterBuilderView(t *testing.T) {
	fb := newTestBuilder()
	addCondition(fb, "category", 0, "Resort")
	send(fb, runes("o"))

	view := fb.View()
	assert.Contains(t, view, "Filter Builder")
	assert.Contains(t, view, "Preview:")
	assert.Contains(t, view, "Optimized:")
	assert.Contains(t, view, "valid, complexity 0")
}
