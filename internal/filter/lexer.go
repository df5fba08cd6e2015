package filter

import (
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokLParen
	tokRParen
	tokComma
	tokColon
)

type token struct {
	kind  tokenKind
	text  string
	start int // byte offset of the first byte
	end   int // byte offset one past the last byte
}

// lex splits expr into words, string literals and punctuation. It never
// fails: an unterminated literal runs to the end of the input.
func lex(expr string) []token {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", start: i, end: i + 1})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", start: i, end: i + 1})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", start: i, end: i + 1})
			i++
		case c == ':':
			tokens = append(tokens, token{kind: tokColon, text: ":", start: i, end: i + 1})
			i++
		case c == '\'':
			end := scanString(expr, i)
			tokens = append(tokens, token{kind: tokString, text: expr[i:end], start: i, end: end})
			i = end
		default:
			end := scanWord(expr, i)
			tokens = append(tokens, token{kind: tokWord, text: expr[i:end], start: i, end: end})
			i = end
		}
	}
	return tokens
}

// scanString returns the offset just past the literal starting at start.
// Doubled quotes inside the literal are part of it.
func scanString(expr string, start int) int {
	i := start + 1
	for i < len(expr) {
		if expr[i] == '\'' {
			if i+1 < len(expr) && expr[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(expr)
}

// scanWord reads an identifier, number or keyword. Words that start with a
// digit may contain ':' so that DateTimeOffset literals stay in one piece.
func scanWord(expr string, start int) int {
	numeric := unicode.IsDigit(rune(expr[start])) || expr[start] == '-'
	i := start
	for i < len(expr) {
		c := expr[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == ',' || c == '\'' {
			break
		}
		if c == ':' && !numeric {
			break
		}
		i++
	}
	if i == start {
		return start + 1
	}
	return i
}

// normalizeSpace collapses whitespace runs outside string literals, drops
// whitespace just inside parentheses and trims the ends
func normalizeSpace(expr string) string {
	out := make([]byte, 0, len(expr))
	pendingSpace := false
	i := 0
	for i < len(expr) {
		c := expr[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			pendingSpace = true
			i++
			continue
		}
		if pendingSpace && len(out) > 0 && out[len(out)-1] != '(' && c != ')' {
			out = append(out, ' ')
		}
		pendingSpace = false
		if c == '\'' {
			end := scanString(expr, i)
			out = append(out, expr[i:end]...)
			i = end
			continue
		}
		out = append(out, c)
		i++
	}
	return string(out)
}
