package filter

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazysearch/internal/models"
)

var (
	logicalKeywords = map[string]bool{"and": true, "or": true}

	comparisonKeywords = map[string]bool{
		"eq": true, "ne": true, "gt": true, "ge": true, "lt": true, "le": true,
	}

	knownFunctions = map[string]bool{
		"contains":              true,
		"startswith":            true,
		"endswith":              true,
		"search.in":             true,
		"search.ismatch":        true,
		"search.ismatchscoring": true,
		"search.score":          true,
		"geo.distance":          true,
		"geo.intersects":        true,
	}
)

// Complexity weights, in tenths of a point
const (
	weightAnd   = 10
	weightOr    = 20
	weightAny   = 30
	weightAll   = 40
	weightParen = 10
	weightToken = 1
)

// Validate checks the lexical well-formedness of a filter expression and
// scores its complexity. It never fails; problems are reported in the result.
//
// The operator check is a heuristic scan, not a parse. It can both miss
// errors and warn about valid expressions.
func Validate(expr string) models.ValidationResult {
	result := models.ValidationResult{
		Issues:   []string{},
		Warnings: []string{},
	}

	if strings.TrimSpace(expr) == "" {
		result.IsValid = true
		return result
	}

	if n := strings.Count(expr, "'"); n%2 != 0 {
		result.Issues = append(result.Issues, fmt.Sprintf("unmatched quotes: %d single quotes, a string literal is not terminated", n))
	}

	tokens := lex(expr)

	if issue := checkParentheses(tokens); issue != "" {
		result.Issues = append(result.Issues, issue)
	}

	result.Warnings = append(result.Warnings, scanOperators(tokens)...)
	result.ComplexityScore = complexity(expr, tokens)
	result.IsValid = len(result.Issues) == 0

	return result
}

func checkParentheses(tokens []token) string {
	open, closed, depth := 0, 0, 0
	stray := -1
	for _, t := range tokens {
		switch t.kind {
		case tokLParen:
			open++
			depth++
		case tokRParen:
			closed++
			depth--
			if depth < 0 && stray < 0 {
				stray = t.start
			}
		}
	}

	if open != closed {
		return fmt.Sprintf("mismatched parentheses: %d opening and %d closing", open, closed)
	}
	if stray >= 0 {
		return fmt.Sprintf("mismatched parentheses: ')' at position %d has no matching '('", stray)
	}
	return ""
}

// scanOperators walks the tokens expecting operands and operators to alternate
func scanOperators(tokens []token) []string {
	var warnings []string
	expectOperand := true

	for i, t := range tokens {
		switch t.kind {
		case tokLParen, tokComma, tokColon:
			expectOperand = true
		case tokRParen, tokString:
			expectOperand = false
		case tokWord:
			word := strings.ToLower(t.text)
			if expectOperand {
				switch {
				case word == "not":
				case logicalKeywords[word] || comparisonKeywords[word]:
					warnings = append(warnings, fmt.Sprintf("operator %q at position %d is missing its left operand", t.text, t.start))
				default:
					if i+1 < len(tokens) && tokens[i+1].kind == tokLParen && tokens[i+1].start == t.end {
						if !isLambda(word) && !knownFunctions[word] {
							warnings = append(warnings, fmt.Sprintf("unrecognized function %q at position %d", t.text, t.start))
						}
					}
					expectOperand = false
				}
				continue
			}

			if logicalKeywords[word] || comparisonKeywords[word] {
				expectOperand = true
				continue
			}
			warnings = append(warnings, fmt.Sprintf("unrecognized operator token %q at position %d", t.text, t.start))
			expectOperand = true
		}
	}

	return warnings
}

func complexity(expr string, tokens []token) int {
	tenths := len(strings.Fields(expr)) * weightToken
	for _, t := range tokens {
		switch t.kind {
		case tokLParen:
			tenths += weightParen
		case tokWord:
			word := strings.ToLower(t.text)
			switch {
			case word == "and":
				tenths += weightAnd
			case word == "or":
				tenths += weightOr
			case strings.HasSuffix(word, "/any"):
				tenths += weightAny
			case strings.HasSuffix(word, "/all"):
				tenths += weightAll
			}
		}
	}
	return tenths / 10
}

func isLambda(word string) bool {
	return strings.HasSuffix(word, "/any") || strings.HasSuffix(word, "/all")
}
