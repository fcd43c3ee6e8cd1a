package compiler

import "github.com/emberlang/ember/pkg/token"

// precedence orders binding power low-to-high.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is the parse table: one entry per token type, giving its prefix
// handler, infix handler, and infix binding power. Token types with no
// entry keep the zero rule (no handlers, precNone).
var rules [token.EOF + 1]parseRule

func init() {
	rules[token.LeftParen] = parseRule{prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall}
	rules[token.Dot] = parseRule{infix: (*Compiler).dot, precedence: precCall}
	rules[token.Minus] = parseRule{prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm}
	rules[token.Plus] = parseRule{infix: (*Compiler).binary, precedence: precTerm}
	rules[token.Slash] = parseRule{infix: (*Compiler).binary, precedence: precFactor}
	rules[token.Star] = parseRule{infix: (*Compiler).binary, precedence: precFactor}
	rules[token.Bang] = parseRule{prefix: (*Compiler).unary}
	rules[token.BangEqual] = parseRule{infix: (*Compiler).binary, precedence: precEquality}
	rules[token.EqualEqual] = parseRule{infix: (*Compiler).binary, precedence: precEquality}
	rules[token.Greater] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.GreaterEqual] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.Less] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.LessEqual] = parseRule{infix: (*Compiler).binary, precedence: precComparison}
	rules[token.Identifier] = parseRule{prefix: (*Compiler).variable}
	rules[token.String] = parseRule{prefix: (*Compiler).string}
	rules[token.Number] = parseRule{prefix: (*Compiler).number}
	rules[token.And] = parseRule{infix: (*Compiler).and, precedence: precAnd}
	rules[token.Or] = parseRule{infix: (*Compiler).or, precedence: precOr}
	rules[token.False] = parseRule{prefix: (*Compiler).literal}
	rules[token.Nil] = parseRule{prefix: (*Compiler).literal}
	rules[token.True] = parseRule{prefix: (*Compiler).literal}
	rules[token.Super] = parseRule{prefix: (*Compiler).super_}
	rules[token.This] = parseRule{prefix: (*Compiler).this_}
}

func getRule(t token.Type) parseRule { return rules[t] }

// parsePrecedence is the heart of the Pratt parser: consume a prefix
// expression, then keep folding in infix operators as long as the next
// token's precedence is at least prec.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }
