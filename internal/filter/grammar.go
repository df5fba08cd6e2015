package filter

import (
	"strings"

	"github.com/rebeliceyang/lazysearch/internal/models"
)

// Grammar maps operators to the keywords of a target filter grammar.
// A Grammar is immutable once constructed; use NewGrammar to derive variants.
type Grammar struct {
	infix     map[models.Operator]string
	functions map[models.Operator]string
	labels    map[models.Operator]string
	itemVar   string
}

// ODataGrammar is the grammar accepted by the search service's filter parameter
var ODataGrammar = NewGrammar(
	map[models.Operator]string{
		models.OpEqual:          "eq",
		models.OpNotEqual:       "ne",
		models.OpGreaterThan:    "gt",
		models.OpGreaterOrEqual: "ge",
		models.OpLessThan:       "lt",
		models.OpLessOrEqual:    "le",
	},
	map[models.Operator]string{
		models.OpContains:   "contains",
		models.OpStartsWith: "startswith",
		models.OpEndsWith:   "endswith",
	},
	"item",
)

var operatorLabels = map[models.Operator]string{
	models.OpEqual:          "equals",
	models.OpNotEqual:       "not equals",
	models.OpGreaterThan:    "greater than",
	models.OpGreaterOrEqual: "greater or equal",
	models.OpLessThan:       "less than",
	models.OpLessOrEqual:    "less or equal",
	models.OpContains:       "contains",
	models.OpStartsWith:     "starts with",
	models.OpEndsWith:       "ends with",
}

// NewGrammar creates a grammar from infix and function keyword tables.
// The tables are copied, so later changes by the caller have no effect.
func NewGrammar(infix, functions map[models.Operator]string, itemVar string) Grammar {
	g := Grammar{
		infix:     make(map[models.Operator]string, len(infix)),
		functions: make(map[models.Operator]string, len(functions)),
		labels:    operatorLabels,
		itemVar:   itemVar,
	}
	for op, tok := range infix {
		g.infix[op] = tok
	}
	for op, fn := range functions {
		g.functions[op] = fn
	}
	if g.itemVar == "" {
		g.itemVar = "item"
	}
	return g
}

// Token returns the infix keyword for op
func (g Grammar) Token(op models.Operator) (string, bool) {
	tok, ok := g.infix[op]
	return tok, ok
}

// Function returns the function name for op
func (g Grammar) Function(op models.Operator) (string, bool) {
	fn, ok := g.functions[op]
	return fn, ok
}

// Supports reports whether op can be rendered by this grammar
func (g Grammar) Supports(op models.Operator) bool {
	_, infix := g.infix[op]
	_, fn := g.functions[op]
	return infix || fn
}

// ItemVariable returns the identifier bound inside any/all lambdas
func (g Grammar) ItemVariable() string {
	return g.itemVar
}

// Describe returns a human readable label for op
func (g Grammar) Describe(op models.Operator) string {
	if label, ok := g.labels[op]; ok {
		return label
	}
	return string(op)
}

// GetOperatorsForType returns available operators for a given EDM field type
func GetOperatorsForType(edmType string) []models.Operator {
	t := strings.ToLower(strings.TrimSpace(edmType))
	switch {
	case strings.HasPrefix(t, "collection("):
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
			models.OpContains, models.OpStartsWith, models.OpEndsWith,
		}
	case strings.Contains(t, "geography"):
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
		}
	case strings.Contains(t, "int") || strings.Contains(t, "double") ||
		strings.Contains(t, "single") || strings.Contains(t, "decimal"):
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
			models.OpGreaterThan, models.OpGreaterOrEqual,
			models.OpLessThan, models.OpLessOrEqual,
		}
	case strings.Contains(t, "string"):
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
			models.OpContains, models.OpStartsWith, models.OpEndsWith,
		}
	case strings.Contains(t, "bool"):
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
		}
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
			models.OpGreaterThan, models.OpGreaterOrEqual,
			models.OpLessThan, models.OpLessOrEqual,
		}
	default:
		return []models.Operator{
			models.OpEqual, models.OpNotEqual,
		}
	}
}

// IsCollectionType reports whether edmType names a multi-valued field
func IsCollectionType(edmType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(edmType)), "collection(")
}
