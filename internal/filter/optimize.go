package filter

import (
	"strings"

	"github.com/samber/lo"
)

// Optimize applies two textual cleanups to a filter expression:
//
//  1. innermost grouping parentheses are removed when doing so cannot change
//     precedence, i.e. the group uses at most one kind of logical operator and
//     the surrounding level uses the same kind or none;
//  2. duplicate conjuncts of a top level "and" chain are dropped, so
//     "X and X" becomes "X".
//
// This is best-effort string rewriting, not query optimization. Malformed
// input and input matching neither pattern is returned unchanged.
func Optimize(expr string) string {
	out := collapseParens(expr)
	return dedupeConjuncts(out)
}

type parenPair struct {
	open, close int // token indexes
	parent      int // index into pairs of the enclosing pair, -1 at top level
}

// parenStructure matches parentheses and records each token's depth.
// ok is false when quotes or parentheses are unbalanced.
func parenStructure(expr string, tokens []token) (pairs []parenPair, depth []int, ok bool) {
	if strings.Count(expr, "'")%2 != 0 {
		return nil, nil, false
	}

	depth = make([]int, len(tokens))
	var stack []int // indexes into pairs
	for i, t := range tokens {
		depth[i] = len(stack)
		switch t.kind {
		case tokLParen:
			parent := -1
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			pairs = append(pairs, parenPair{open: i, close: -1, parent: parent})
			stack = append(stack, len(pairs)-1)
		case tokRParen:
			if len(stack) == 0 {
				return nil, nil, false
			}
			depth[i] = len(stack) - 1
			pairs[stack[len(stack)-1]].close = i
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return nil, nil, false
	}
	return pairs, depth, true
}

type parenRole int

const (
	roleGrouping parenRole = iota
	roleLambda
	roleOther
)

// role classifies the parenthesis at token index open by what precedes it
func role(tokens []token, open int) parenRole {
	if open == 0 {
		return roleGrouping
	}
	prev := tokens[open-1]
	switch prev.kind {
	case tokLParen, tokColon:
		return roleGrouping
	case tokWord:
		if logicalKeywords[prev.text] {
			return roleGrouping
		}
		if isLambda(strings.ToLower(prev.text)) {
			return roleLambda
		}
	}
	return roleOther
}

// boundedAfter reports whether the parenthesis at token index rparen is
// followed by a logical keyword, a closing parenthesis or the end of input
func boundedAfter(tokens []token, rparen int) bool {
	if rparen == len(tokens)-1 {
		return true
	}
	next := tokens[rparen+1]
	switch next.kind {
	case tokRParen:
		return true
	case tokWord:
		return logicalKeywords[next.text]
	}
	return false
}

// logicalOps collects the and/or keywords found at the given depth between tokens from and to (exclusive)
func logicalOps(tokens []token, depth []int, from, to, level int) map[string]bool {
	ops := map[string]bool{}
	for i := from; i < to; i++ {
		if tokens[i].kind != tokWord || depth[i] != level {
			continue
		}
		word := strings.ToLower(tokens[i].text)
		if logicalKeywords[word] {
			ops[word] = true
		}
	}
	return ops
}

func sameOps(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for op := range a {
		if !b[op] {
			return false
		}
	}
	return true
}

func collapseParens(expr string) string {
	tokens := lex(expr)
	pairs, depth, ok := parenStructure(expr, tokens)
	if !ok || len(pairs) == 0 {
		return expr
	}

	innermost := make([]bool, len(pairs))
	for i := range innermost {
		innermost[i] = true
	}
	for _, p := range pairs {
		if p.parent >= 0 {
			innermost[p.parent] = false
		}
	}

	var remove []int // token indexes
	for i, p := range pairs {
		if !innermost[i] || role(tokens, p.open) != roleGrouping || !boundedAfter(tokens, p.close) {
			continue
		}

		level := depth[p.open]
		from, to := 0, len(tokens)
		if p.parent >= 0 {
			enclosing := pairs[p.parent]
			if role(tokens, enclosing.open) == roleOther {
				continue
			}
			from, to = enclosing.open+1, enclosing.close
		}

		inner := logicalOps(tokens, depth, p.open+1, p.close, level+1)
		if len(inner) > 1 {
			continue
		}
		if len(inner) == 1 {
			outer := logicalOps(tokens, depth, from, to, level)
			if len(outer) > 1 {
				continue
			}
			if len(outer) == 1 && !sameOps(inner, outer) {
				continue
			}
		}
		remove = append(remove, p.open, p.close)
	}

	if len(remove) == 0 {
		return expr
	}

	drop := make(map[int]bool, len(remove))
	for _, idx := range remove {
		drop[tokens[idx].start] = true
	}
	var b strings.Builder
	b.Grow(len(expr))
	for i := 0; i < len(expr); i++ {
		if drop[i] {
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(expr[i])
	}
	return normalizeSpace(b.String())
}

func dedupeConjuncts(expr string) string {
	tokens := lex(expr)
	_, depth, ok := parenStructure(expr, tokens)
	if !ok {
		return expr
	}

	var conjuncts []string
	segStart := 0
	for i, t := range tokens {
		if t.kind != tokWord || depth[i] != 0 {
			continue
		}
		switch t.text {
		case "or":
			return expr
		case "and":
			conjuncts = append(conjuncts, normalizeSpace(expr[segStart:t.start]))
			segStart = t.end
		default:
			// keywords are case-sensitive; "AND" is not a conjunction
			if logicalKeywords[strings.ToLower(t.text)] {
				return expr
			}
		}
	}
	if len(conjuncts) == 0 {
		return expr
	}
	conjuncts = append(conjuncts, normalizeSpace(expr[segStart:]))
	if lo.Contains(conjuncts, "") {
		return expr
	}

	unique := lo.Uniq(conjuncts)
	if len(unique) == len(conjuncts) {
		return expr
	}
	return strings.Join(unique, " and ")
}
