package compiler

import (
	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/token"
)

// classDeclaration compiles `class Name [< Superclass] { methods... }`.
// Inheritance is wired at runtime: the superclass value is loaded, INHERIT
// copies its method table into the new class, and a synthetic `super`
// local is declared in a wrapper scope so methods that use `super` capture
// it as an upvalue.
func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "Expect class name.")
	nameTok := c.previous
	nameConstant := c.identifierConstant(c.previous)
	c.declareVariable()

	c.emitOpByte(bytecode.Class, nameConstant)
	c.defineVariable(nameConstant)

	classComp := &classCompiler{enclosing: c.class}
	c.class = classComp

	if c.match(token.Less) {
		c.consume(token.Identifier, "Expect superclass name.")
		c.variable(false)
		if identifiersEqual(nameTok, c.previous) {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal(syntheticToken("super"))
		c.defineVariable(0)

		c.namedVariable(nameTok, false)
		c.emitOp(bytecode.Inherit)
		classComp.hasSuperclass = true
	}

	c.namedVariable(nameTok, false)
	c.consume(token.LeftBrace, "Expect '{' before class body.")
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RightBrace, "Expect '}' after class body.")
	c.emitOp(bytecode.Pop)

	if classComp.hasSuperclass {
		c.endScope()
	}

	c.class = c.class.enclosing
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "Expect method name.")
	name := c.previous.Lexeme
	constant := c.identifierConstant(c.previous)

	funcType := TypeMethod
	if name == "init" {
		funcType = TypeInitializer
	}
	c.function(funcType)
	c.emitOpByte(bytecode.Method, constant)
}
