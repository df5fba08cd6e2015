package filter

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRenderCondition(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name string
		cond models.FilterCondition
		want string
	}{
		{
			name: "string equals",
			cond: models.FilterCondition{Field: "category", Operator: models.OpEqual, Value: "Electronics"},
			want: "category eq 'Electronics'",
		},
		{
			name: "embedded quote is doubled",
			cond: models.FilterCondition{Field: "author", Operator: models.OpNotEqual, Value: "O'Brien"},
			want: "author ne 'O''Brien'",
		},
		{
			name: "integer",
			cond: models.FilterCondition{Field: "price", Operator: models.OpGreaterOrEqual, Value: 50},
			want: "price ge 50",
		},
		{
			name: "float",
			cond: models.FilterCondition{Field: "rating", Operator: models.OpGreaterThan, Value: 4.5},
			want: "rating gt 4.5",
		},
		{
			name: "whole float has no trailing zero",
			cond: models.FilterCondition{Field: "rating", Operator: models.OpLessThan, Value: 4.0},
			want: "rating lt 4",
		},
		{
			name: "boolean",
			cond: models.FilterCondition{Field: "isActive", Operator: models.OpEqual, Value: true},
			want: "isActive eq true",
		},
		{
			name: "null",
			cond: models.FilterCondition{Field: "deletedAt", Operator: models.OpEqual, Value: nil},
			want: "deletedAt eq null",
		},
		{
			name: "date",
			cond: models.FilterCondition{Field: "created", Operator: models.OpLessOrEqual, Value: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
			want: "created le 2024-03-01T12:00:00Z",
		},
		{
			name: "contains",
			cond: models.FilterCondition{Field: "description", Operator: models.OpContains, Value: "wifi"},
			want: "contains(description, 'wifi')",
		},
		{
			name: "startswith",
			cond: models.FilterCondition{Field: "name", Operator: models.OpStartsWith, Value: "Sea"},
			want: "startswith(name, 'Sea')",
		},
		{
			name: "endswith",
			cond: models.FilterCondition{Field: "name", Operator: models.OpEndsWith, Value: "Inn"},
			want: "endswith(name, 'Inn')",
		},
		{
			name: "any lambda",
			cond: models.FilterCondition{Field: "tags", Operator: models.OpEqual, Value: "premium", CollectionFunction: models.CollectionAny},
			want: "tags/any(item: item eq 'premium')",
		},
		{
			name: "all lambda with function",
			cond: models.FilterCondition{Field: "tags", Operator: models.OpContains, Value: "special", CollectionFunction: models.CollectionAll},
			want: "tags/all(item: contains(item, 'special'))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.RenderCondition(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderConditionErrors(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name string
		cond models.FilterCondition
		want error
	}{
		{"empty field", models.FilterCondition{Field: "  ", Operator: models.OpEqual, Value: "x"}, ErrEmptyField},
		{"slice value", models.FilterCondition{Field: "tags", Operator: models.OpEqual, Value: []string{"a", "b"}}, ErrMultipleValues},
		{"slice value for function", models.FilterCondition{Field: "tags", Operator: models.OpContains, Value: []string{"a"}}, ErrMultipleValues},
		{"bad collection function", models.FilterCondition{Field: "tags", Operator: models.OpEqual, Value: "a", CollectionFunction: "some"}, ErrInvalidCollectionFunction},
		{"non-string function argument", models.FilterCondition{Field: "name", Operator: models.OpContains, Value: 3}, ErrUnsupportedValue},
		{"unknown operator", models.FilterCondition{Field: "name", Operator: "like", Value: "x"}, ErrUnsupportedOperator},
		{"ordering against null", models.FilterCondition{Field: "price", Operator: models.OpGreaterThan, Value: nil}, ErrUnsupportedValue},
		{"unsupported value type", models.FilterCondition{Field: "price", Operator: models.OpEqual, Value: struct{}{}}, ErrUnsupportedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.RenderCondition(tt.cond)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)

			var cerr *ConstructionError
			assert.True(t, errors.As(err, &cerr))
		})
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	values := []string{"", "plain", "it's", "''", "a'b'c", "trailing'"}
	b := NewBuilder()

	for _, v := range values {
		expr, err := b.RenderCondition(models.FilterCondition{Field: "f", Operator: models.OpEqual, Value: v})
		require.NoError(t, err)

		lit := strings.TrimPrefix(expr, "f eq ")
		assert.Equal(t, strings.Count(v, "'")*2+2, strings.Count(lit, "'"))

		back, ok := UnquoteString(lit)
		require.True(t, ok)
		assert.Equal(t, v, back)
	}
}

func TestRenderGroup(t *testing.T) {
	b := NewBuilder()

	t.Run("flat and", func(t *testing.T) {
		got, err := b.RenderGroup(models.FilterGroup{
			Logic: models.LogicAnd,
			Conditions: []models.Node{
				models.FilterCondition{Field: "price", Operator: models.OpGreaterOrEqual, Value: 50},
				models.FilterCondition{Field: "price", Operator: models.OpLessOrEqual, Value: 200},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "price ge 50 and price le 200", got)
	})

	t.Run("default logic is and", func(t *testing.T) {
		got, err := b.RenderGroup(models.FilterGroup{
			Conditions: []models.Node{
				models.FilterCondition{Field: "a", Operator: models.OpEqual, Value: 1},
				models.FilterCondition{Field: "b", Operator: models.OpEqual, Value: 2},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "a eq 1 and b eq 2", got)
	})

	t.Run("nested group is parenthesized", func(t *testing.T) {
		got, err := b.RenderGroup(models.FilterGroup{
			Logic: models.LogicAnd,
			Conditions: []models.Node{
				models.FilterCondition{Field: "category", Operator: models.OpEqual, Value: "Hotels"},
				models.FilterGroup{
					Logic: models.LogicOr,
					Conditions: []models.Node{
						models.FilterCondition{Field: "rating", Operator: models.OpGreaterOrEqual, Value: 4},
						&models.FilterCondition{Field: "price", Operator: models.OpLessThan, Value: 100},
					},
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "category eq 'Hotels' and (rating ge 4 or price lt 100)", got)
	})

	t.Run("single child groups add no parentheses", func(t *testing.T) {
		inner := models.FilterGroup{
			Logic: models.LogicOr,
			Conditions: []models.Node{
				models.FilterGroup{Conditions: []models.Node{
					models.FilterCondition{Field: "a", Operator: models.OpEqual, Value: 1},
				}},
			},
		}
		got, err := b.RenderGroup(models.FilterGroup{Conditions: []models.Node{inner}})
		require.NoError(t, err)
		assert.Equal(t, "a eq 1", got)
	})

	t.Run("single child wrapping a multi child group keeps one pair", func(t *testing.T) {
		pair := models.FilterGroup{
			Logic: models.LogicOr,
			Conditions: []models.Node{
				models.FilterCondition{Field: "a", Operator: models.OpEqual, Value: 1},
				models.FilterCondition{Field: "b", Operator: models.OpEqual, Value: 2},
			},
		}
		got, err := b.RenderGroup(models.FilterGroup{
			Logic: models.LogicAnd,
			Conditions: []models.Node{
				models.FilterGroup{Conditions: []models.Node{pair}},
				models.FilterCondition{Field: "c", Operator: models.OpEqual, Value: 3},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "(a eq 1 or b eq 2) and c eq 3", got)
	})

	t.Run("order is preserved and output is deterministic", func(t *testing.T) {
		g := models.FilterGroup{
			Logic: models.LogicOr,
			Conditions: []models.Node{
				models.FilterCondition{Field: "z", Operator: models.OpEqual, Value: "1"},
				models.FilterCondition{Field: "a", Operator: models.OpEqual, Value: "1"},
				models.FilterCondition{Field: "z", Operator: models.OpEqual, Value: "1"},
			},
		}
		first, err := b.RenderGroup(g)
		require.NoError(t, err)
		second, err := b.RenderGroup(g)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, "z eq '1' or a eq '1' or z eq '1'", first)
	})
}

func TestRenderGroupErrors(t *testing.T) {
	b := NewBuilder()

	_, err := b.RenderGroup(models.FilterGroup{})
	assert.ErrorIs(t, err, ErrEmptyGroup)

	_, err = b.RenderGroup(models.FilterGroup{Logic: "xor", Conditions: []models.Node{
		models.FilterCondition{Field: "a", Operator: models.OpEqual, Value: 1},
	}})
	assert.ErrorIs(t, err, ErrInvalidLogic)

	_, err = b.RenderGroup(models.FilterGroup{Conditions: []models.Node{
		models.FilterCondition{Field: "a", Operator: models.OpEqual, Value: 1},
		models.FilterGroup{},
	}})
	assert.ErrorIs(t, err, ErrEmptyGroup)
	assert.Contains(t, err.Error(), "condition 2")

	var nilCond *models.FilterCondition
	_, err = b.RenderGroup(models.FilterGroup{Conditions: []models.Node{nilCond}})
	assert.ErrorIs(t, err, ErrNilNode)

	_, err = b.RenderGroup(models.FilterGroup{Conditions: []models.Node{nil}})
	assert.ErrorIs(t, err, ErrNilNode)
}

func TestBuildFilter(t *testing.T) {
	b := NewBuilder()

	got, err := b.BuildFilter(models.Filter{IndexName: "hotels"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = b.BuildFilter(models.Filter{
		IndexName: "hotels",
		RootGroup: models.FilterGroup{Conditions: []models.Node{
			models.FilterCondition{Field: "category", Operator: models.OpEqual, Value: "Resort"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "category eq 'Resort'", got)
}

func TestBuildCollectionFilter(t *testing.T) {
	b := NewBuilder()

	got, err := b.BuildCollectionFilter("tags", []string{"premium", "new"}, models.CollectionAny, models.OpContains)
	require.NoError(t, err)
	assert.Equal(t, "tags/any(item: contains(item, 'premium') or contains(item, 'new'))", got)

	got, err = b.BuildCollectionFilter("tags", []string{"pool", "view"}, models.CollectionAll, models.OpEqual)
	require.NoError(t, err)
	assert.Equal(t, "tags/all(item: item eq 'pool' or item eq 'view')", got)

	got, err = b.BuildCollectionFilter("tags", []string{"it's"}, models.CollectionAny, "")
	require.NoError(t, err)
	assert.Equal(t, "tags/any(item: item eq 'it''s')", got)

	_, err = b.BuildCollectionFilter("tags", nil, models.CollectionAny, models.OpEqual)
	assert.ErrorIs(t, err, ErrEmptyValues)

	_, err = b.BuildCollectionFilter("tags", []string{"a"}, "none", models.OpEqual)
	assert.ErrorIs(t, err, ErrInvalidCollectionFunction)

	_, err = b.BuildCollectionFilter("", []string{"a"}, models.CollectionAny, models.OpEqual)
	assert.ErrorIs(t, err, ErrEmptyField)

	_, err = b.BuildCollectionFilter("tags", []string{"a"}, models.CollectionAny, "like")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestGrammarVariant(t *testing.T) {
	g := NewGrammar(
		map[models.Operator]string{models.OpEqual: "EQ"},
		map[models.Operator]string{models.OpContains: "has"},
		"x",
	)
	b := NewBuilderWithGrammar(g)

	got, err := b.RenderCondition(models.FilterCondition{Field: "tags", Operator: models.OpContains, Value: "a", CollectionFunction: models.CollectionAny})
	require.NoError(t, err)
	assert.Equal(t, "tags/any(x: has(x, 'a'))", got)

	_, err = b.RenderCondition(models.FilterCondition{Field: "a", Operator: models.OpNotEqual, Value: 1})
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	assert.False(t, ODataGrammar.Supports("like"))
	assert.Equal(t, "greater or equal", ODataGrammar.Describe(models.OpGreaterOrEqual))
}

func TestGetOperatorsForType(t *testing.T) {
	assert.Contains(t, GetOperatorsForType("Edm.String"), models.OpContains)
	assert.NotContains(t, GetOperatorsForType("Edm.Int32"), models.OpContains)
	assert.Contains(t, GetOperatorsForType("Edm.Double"), models.OpLessThan)
	assert.Equal(t, []models.Operator{models.OpEqual, models.OpNotEqual}, GetOperatorsForType("Edm.Boolean"))
	assert.Contains(t, GetOperatorsForType("Edm.DateTimeOffset"), models.OpGreaterOrEqual)
	assert.Contains(t, GetOperatorsForType("Collection(Edm.String)"), models.OpStartsWith)
	assert.Equal(t, []models.Operator{models.OpEqual, models.OpNotEqual}, GetOperatorsForType("Edm.GeographyPoint"))
	assert.True(t, IsCollectionType("Collection(Edm.String)"))
	assert.False(t, IsCollectionType("Edm.String"))
}

func TestBuilderConcurrentUse(t *testing.T) {
	b := NewBuilder()
	var g errgroup.Group

	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			want := fmt.Sprintf("n eq %d and tags/any(item: item eq 'v%d')", i, i)
			got, err := b.RenderGroup(models.FilterGroup{Conditions: []models.Node{
				models.FilterCondition{Field: "n", Operator: models.OpEqual, Value: i},
				models.FilterCondition{Field: "tags", Operator: models.OpEqual, Value: fmt.Sprintf("v%d", i), CollectionFunction: models.CollectionAny},
			}})
			if err != nil {
				return err
			}
			if got != want {
				return fmt.Errorf("got %q, want %q", got, want)
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
}
