package models

// Operator represents a filter comparison operator
type Operator string

const (
	OpEqual          Operator = "eq"
	OpNotEqual       Operator = "ne"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "ge"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "le"
	OpContains       Operator = "contains"   // rendered as a function call
	OpStartsWith     Operator = "startswith" // rendered as a function call
	OpEndsWith       Operator = "endswith"   // rendered as a function call
)

// IsOrdering reports whether the operator compares by order (gt, ge, lt, le)
func (o Operator) IsOrdering() bool {
	return o == OpGreaterThan || o == OpGreaterOrEqual || o == OpLessThan || o == OpLessOrEqual
}

// CollectionFunction marks a condition as scoped to the elements of a collection field
type CollectionFunction string

const (
	CollectionNone CollectionFunction = ""
	CollectionAny  CollectionFunction = "any"
	CollectionAll  CollectionFunction = "all"
)

// LogicalOperator joins the children of a FilterGroup
type LogicalOperator string

const (
	LogicAnd LogicalOperator = "and"
	LogicOr  LogicalOperator = "or"
)

// Node is a member of a filter tree. It is implemented only by
// FilterCondition and FilterGroup.
type Node interface {
	filterNode()
}

// FilterCondition represents a single leaf predicate
type FilterCondition struct {
	Field              string
	Operator           Operator
	Value              interface{}
	CollectionFunction CollectionFunction
}

func (FilterCondition) filterNode() {}

// FilterGroup represents a group of child nodes joined by one logical operator
type FilterGroup struct {
	Conditions []Node
	Logic      LogicalOperator
}

func (FilterGroup) filterNode() {}

// Filter represents the complete filter state for one index
type Filter struct {
	RootGroup FilterGroup
	IndexName string
}

// ValidationResult is the report produced by validating a filter expression
type ValidationResult struct {
	IsValid         bool     `json:"is_valid" yaml:"is_valid"`
	Issues          []string `json:"issues" yaml:"issues"`
	Warnings        []string `json:"warnings" yaml:"warnings"`
	ComplexityScore int      `json:"complexity_score" yaml:"complexity_score"`
}
