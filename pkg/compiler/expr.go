package compiler

import (
	"strconv"

	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/token"
	"github.com/emberlang/ember/pkg/value"
)

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.NumberVal(n))
}

// string strips the surrounding quotes the scanner left in place and
// interns the contents, so equal-content string literals anywhere in the
// program share one ObjString.
func (c *Compiler) string(canAssign bool) {
	lexeme := c.previous.Lexeme
	chars := []byte(lexeme[1 : len(lexeme)-1])
	str := c.alloc.InternString(chars)
	c.emitConstant(value.StringVal(str))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(bytecode.False)
	case token.Nil:
		c.emitOp(bytecode.Nil)
	case token.True:
		c.emitOp(bytecode.True)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.Bang:
		c.emitOp(bytecode.Not)
	case token.Minus:
		c.emitOp(bytecode.Negate)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BangEqual:
		c.emitOp(bytecode.Equal)
		c.emitOp(bytecode.Not)
	case token.EqualEqual:
		c.emitOp(bytecode.Equal)
	case token.Greater:
		c.emitOp(bytecode.Greater)
	case token.GreaterEqual:
		c.emitOp(bytecode.Less)
		c.emitOp(bytecode.Not)
	case token.Less:
		c.emitOp(bytecode.Less)
	case token.LessEqual:
		c.emitOp(bytecode.Greater)
		c.emitOp(bytecode.Not)
	case token.Plus:
		c.emitOp(bytecode.Add)
	case token.Minus:
		c.emitOp(bytecode.Subtract)
	case token.Star:
		c.emitOp(bytecode.Multiply)
	case token.Slash:
		c.emitOp(bytecode.Divide)
	}
}

// and short-circuits: if the left operand is falsey, skip the right
// operand entirely and leave the falsey value as the result.
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(bytecode.JumpIfFalse)
	c.emitOp(bytecode.Pop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or short-circuits the opposite way: if the left operand is truthy, skip
// the right operand.
func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(bytecode.JumpIfFalse)
	endJump := c.emitJump(bytecode.Jump)

	c.patchJump(elseJump)
	c.emitOp(bytecode.Pop)

	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(bytecode.Call, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(count)
}

// dot compiles property access, fusing the common `obj.m(args)` shape
// into a single INVOKE instruction instead of a separate GET_PROPERTY +
// CALL pair.
func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emitOpByte(bytecode.SetProperty, name)
	case c.match(token.LeftParen):
		argCount := c.argumentList()
		c.emitOpByte(bytecode.Invoke, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(bytecode.GetProperty, name)
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

// super_ compiles both `super.method` and the fused `super.method(args)`
// call, mirroring dot's INVOKE fusion.
func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(syntheticToken("this"), false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariable(syntheticToken("super"), false)
		c.emitOpByte(bytecode.SuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable(syntheticToken("super"), false)
		c.emitOpByte(bytecode.GetSuper, name)
	}
}

func syntheticToken(name string) token.Token { return token.Token{Type: token.Identifier, Lexeme: name} }

func (c *Compiler) variable(canAssign bool) { c.namedVariable(c.previous, canAssign) }

// namedVariable resolves name to a local slot, an upvalue, or (failing
// both) a global, and emits the matching get or set depending on whether
// an assignment follows.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp bytecode.Opcode
	arg := resolveLocal(c.currFn, name, func() {
		c.error("Can't read local variable in its own initializer.")
	})
	if arg != -1 {
		getOp, setOp = bytecode.GetLocal, bytecode.SetLocal
	} else if arg = c.resolveUpvalue(c.currFn, name); arg != -1 {
		getOp, setOp = bytecode.GetUpvalue, bytecode.SetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = bytecode.GetGlobal, bytecode.SetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}
