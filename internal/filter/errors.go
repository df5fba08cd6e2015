package filter

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyField                = errors.New("field name cannot be empty")
	ErrEmptyGroup                = errors.New("filter group has no conditions")
	ErrEmptyValues               = errors.New("at least one value is required")
	ErrInvalidCollectionFunction = errors.New("collection function must be \"any\" or \"all\"")
	ErrInvalidLogic              = errors.New("logical operator must be \"and\" or \"or\"")
	ErrMultipleValues            = errors.New("operator expects a single value")
	ErrUnsupportedOperator       = errors.New("unsupported operator")
	ErrUnsupportedValue          = errors.New("unsupported value")
	ErrNilNode                   = errors.New("filter node is nil")
)

// ConstructionError reports a structurally invalid filter tree.
// It wraps one of the sentinel errors above.
type ConstructionError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConstructionError) Error() string {
	msg := e.Err.Error()
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid condition on %q: %s", e.Field, msg)
	}
	return "invalid filter: " + msg
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

func constructionErr(field string, err error, format string, args ...interface{}) error {
	reason := ""
	if format != "" {
		reason = fmt.Sprintf(format, args...)
	}
	return &ConstructionError{Field: field, Reason: reason, Err: err}
}
