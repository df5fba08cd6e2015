package filter

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/samber/lo"
)

// Builder generates filter expressions from filter trees.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	grammar Grammar
}

// NewBuilder creates a new filter builder for the OData grammar
func NewBuilder() *Builder {
	return NewBuilderWithGrammar(ODataGrammar)
}

// NewBuilderWithGrammar creates a builder for a grammar variant
func NewBuilderWithGrammar(g Grammar) *Builder {
	return &Builder{grammar: g}
}

// Grammar returns the grammar the builder renders into
func (b *Builder) Grammar() Grammar {
	return b.grammar
}

// BuildFilter generates the filter expression for a whole Filter.
// An empty root group means "no filter" and renders to "".
func (b *Builder) BuildFilter(f models.Filter) (string, error) {
	if len(f.RootGroup.Conditions) == 0 {
		return "", nil
	}
	return b.RenderGroup(f.RootGroup)
}

// RenderCondition renders a single condition, including any/all lambdas
func (b *Builder) RenderCondition(cond models.FilterCondition) (string, error) {
	field := strings.TrimSpace(cond.Field)
	if field == "" {
		return "", constructionErr("", ErrEmptyField, "")
	}

	switch cond.CollectionFunction {
	case models.CollectionNone:
		return b.predicate(field, field, cond.Operator, cond.Value)
	case models.CollectionAny, models.CollectionAll:
		item := b.grammar.ItemVariable()
		inner, err := b.predicate(field, item, cond.Operator, cond.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s/%s(%s: %s)", field, cond.CollectionFunction, item, inner), nil
	default:
		return "", constructionErr(field, ErrInvalidCollectionFunction, "got %q", cond.CollectionFunction)
	}
}

// RenderGroup recursively renders a group. Children keep their input order.
// Nested groups with more than one child are wrapped in parentheses; a
// single-child group is already atomic and is emitted as is.
func (b *Builder) RenderGroup(group models.FilterGroup) (string, error) {
	if len(group.Conditions) == 0 {
		return "", constructionErr("", ErrEmptyGroup, "")
	}

	logic := group.Logic
	if logic == "" {
		logic = models.LogicAnd
	}
	if logic != models.LogicAnd && logic != models.LogicOr {
		return "", constructionErr("", ErrInvalidLogic, "got %q", group.Logic)
	}

	clauses := make([]string, 0, len(group.Conditions))
	for i, node := range group.Conditions {
		clause, err := b.renderNode(node)
		if err != nil {
			return "", fmt.Errorf("condition %d: %w", i+1, err)
		}
		clauses = append(clauses, clause)
	}

	return strings.Join(clauses, " "+string(logic)+" "), nil
}

func (b *Builder) renderNode(node models.Node) (string, error) {
	switch n := node.(type) {
	case models.FilterCondition:
		return b.RenderCondition(n)
	case *models.FilterCondition:
		if n == nil {
			return "", constructionErr("", ErrNilNode, "")
		}
		return b.RenderCondition(*n)
	case models.FilterGroup:
		return b.renderNested(n)
	case *models.FilterGroup:
		if n == nil {
			return "", constructionErr("", ErrNilNode, "")
		}
		return b.renderNested(*n)
	default:
		return "", constructionErr("", ErrNilNode, "")
	}
}

func (b *Builder) renderNested(group models.FilterGroup) (string, error) {
	clause, err := b.RenderGroup(group)
	if err != nil {
		return "", err
	}
	if len(group.Conditions) == 1 {
		return clause, nil
	}
	return "(" + clause + ")", nil
}

// BuildCollectionFilter builds one lambda over a collection field with an
// item predicate per value, joined with "or".
//
// With fn == all the result means "every element matches at least one of the
// values", not "every element matches every value". That is rarely what a
// caller wants when more than one value is given.
func (b *Builder) BuildCollectionFilter(field string, values []string, fn models.CollectionFunction, op models.Operator) (string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", constructionErr("", ErrEmptyField, "")
	}
	if len(values) == 0 {
		return "", constructionErr(field, ErrEmptyValues, "")
	}
	if fn != models.CollectionAny && fn != models.CollectionAll {
		return "", constructionErr(field, ErrInvalidCollectionFunction, "got %q", fn)
	}
	if op == "" {
		op = models.OpEqual
	}

	item := b.grammar.ItemVariable()
	var firstErr error
	predicates := lo.Map(values, func(v string, _ int) string {
		p, err := b.predicate(field, item, op, v)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return p
	})
	if firstErr != nil {
		return "", firstErr
	}

	return fmt.Sprintf("%s/%s(%s: %s)", field, fn, item, strings.Join(predicates, " or ")), nil
}

// predicate renders "<subject> <op> <value>" or "<fn>(<subject>, <value>)".
// field is only used for error reporting.
func (b *Builder) predicate(field, subject string, op models.Operator, value interface{}) (string, error) {
	if fn, ok := b.grammar.Function(op); ok {
		s, isString := value.(string)
		if !isString {
			if isMultiValue(value) {
				return "", constructionErr(field, ErrMultipleValues, "%s takes one value", op)
			}
			return "", constructionErr(field, ErrUnsupportedValue, "%s requires a string value, got %T", op, value)
		}
		return fmt.Sprintf("%s(%s, %s)", fn, subject, QuoteString(s)), nil
	}

	tok, ok := b.grammar.Token(op)
	if !ok {
		return "", constructionErr(field, ErrUnsupportedOperator, "%q", op)
	}
	if value == nil && op.IsOrdering() {
		return "", constructionErr(field, ErrUnsupportedValue, "%s cannot compare against null", op)
	}

	rendered, err := RenderValue(value)
	if err != nil {
		return "", constructionErr(field, err, "")
	}
	return fmt.Sprintf("%s %s %s", subject, tok, rendered), nil
}

// QuoteString renders s as a string literal, doubling internal quotes
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// UnquoteString reverses QuoteString
func UnquoteString(lit string) (string, bool) {
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return "", false
	}
	return strings.ReplaceAll(lit[1:len(lit)-1], "''", "'"), true
}

// RenderValue renders a scalar in its canonical literal form
func RenderValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return QuoteString(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedValue, v)
		}
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedValue, v)
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	}

	if isMultiValue(value) {
		return "", ErrMultipleValues
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

func isMultiValue(value interface{}) bool {
	if value == nil {
		return false
	}
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}
