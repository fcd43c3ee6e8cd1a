// Package compiler implements ember's single-pass compiler: a predictive
// Pratt expression parser fused with recursive descent for statements,
// emitting bytecode directly from the token stream with no intermediate
// AST.
package compiler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/scanner"
	"github.com/emberlang/ember/pkg/token"
	"github.com/emberlang/ember/pkg/value"
)

// Allocator is everything the compiler needs from the VM's single
// allocator. Defining it here rather than importing pkg/vm directly keeps
// pkg/vm free to import pkg/compiler (to drive compilation) without an
// import cycle.
type Allocator interface {
	// InternString returns the canonical *value.ObjString for chars,
	// allocating and interning a new one if no equal-content string exists
	// yet.
	InternString(chars []byte) *value.ObjString
	// NewFunction allocates a fresh, GC-tracked ObjFunction.
	NewFunction() *value.ObjFunction
}

// FuncType distinguishes the kind of function currently being compiled,
// which governs slot-0 binding ("this" vs. the callee) and the implicit
// return emitted at the end of the body.
type FuncType int

const (
	TypeFunction FuncType = iota
	TypeInitializer
	TypeMethod
	TypeScript
)

const maxLocals = 256
const maxUpvalues = 256

// local is a lexically-scoped local variable binding. depth -1 means
// "declared but not yet defined": reading it in its own initializer is an
// error.
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// upvalueRef describes, within one function's compiler state, where an
// upvalue slot's value comes from: a local slot in the immediately
// enclosing function, or an upvalue already captured by it.
type upvalueRef struct {
	index   byte
	isLocal bool
}

// funcCompiler is one stack frame of the compiler's own nested-compilation
// stack: one per function currently being compiled, linked to its
// enclosing compiler.
type funcCompiler struct {
	enclosing *funcCompiler
	function  *value.ObjFunction
	funcType  FuncType

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

// classCompiler tracks nested class declarations, specifically whether the
// class currently being compiled has a superclass (needed to validate
// `super` usage).
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// Compiler drives the scanner synchronously, one token of lookahead, and
// emits bytecode into the chunk owned by the function currently being
// compiled.
type Compiler struct {
	scanner *scanner.Scanner
	alloc   Allocator
	log     *logrus.Logger

	previous token.Token
	current  token.Token

	errs      *multierror.Error
	panicMode bool

	currFn *funcCompiler
	class  *classCompiler
}

// NewCompiler constructs a Compiler ready to compile source, without
// running it. Nothing is allocated until Run, so the caller can register
// the returned *Compiler for root marking first: the GC may run during
// any allocation mid-compile, and the function chain is reachable only
// through MarkRoots until compilation finishes. log carries internal
// diagnostics only (panic-mode entry and resynchronization, at Debug
// level); user-facing error text goes through the returned error, never
// the logger. A nil log is replaced with a default logger.
func NewCompiler(source string, alloc Allocator, log *logrus.Logger) *Compiler {
	if log == nil {
		log = logrus.New()
	}
	return &Compiler{
		scanner: scanner.New(source),
		alloc:   alloc,
		log:     log,
	}
}

// Run drives the compiler to completion, returning the top-level script
// function: arity 0, no upvalues, directly executable by the VM. It
// returns (nil, error) if any diagnostic was reported; the error unwraps
// (via multierror) to every recorded diagnostic, not just the first.
func (c *Compiler) Run() (*value.ObjFunction, error) {
	c.pushFuncCompiler(TypeScript, "")
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")

	fn := c.endFuncCompiler()
	if c.errs != nil {
		return nil, c.errs.ErrorOrNil()
	}
	return fn, nil
}

// Compile is the one-shot convenience form of NewCompiler+Run, used
// wherever nothing needs to observe the in-progress Compiler (e.g. tests).
func Compile(source string, alloc Allocator) (*value.ObjFunction, error) {
	return NewCompiler(source, alloc, nil).Run()
}

// MarkRoots marks every function prototype still live on the compiler's
// nested-compilation stack: the GC may run during any allocation triggered
// mid-compile, and those functions are reachable only from this chain
// until the enclosing statement finishes.
func (c *Compiler) MarkRoots(mark func(*value.ObjFunction)) {
	for fc := c.currFn; fc != nil; fc = fc.enclosing {
		mark(fc.function)
	}
}

func (c *Compiler) pushFuncCompiler(funcType FuncType, name string) {
	fn := c.alloc.NewFunction()
	if name != "" {
		fn.Name = c.alloc.InternString([]byte(name))
	}
	fc := &funcCompiler{
		enclosing: c.currFn,
		function:  fn,
		funcType:  funcType,
	}
	// Slot 0 is reserved: `this` for methods/initializers, the called
	// function itself (unnamed, inaccessible) for plain functions and the
	// top-level script.
	slotName := ""
	if funcType == TypeMethod || funcType == TypeInitializer {
		slotName = "this"
	}
	fc.locals = append(fc.locals, local{name: token.Token{Lexeme: slotName}, depth: 0})
	c.currFn = fc
}

func (c *Compiler) endFuncCompiler() *value.ObjFunction {
	c.emitReturn()
	fn := c.currFn.function
	fn.UpvalueCount = len(c.currFn.upvalues)
	c.currFn = c.currFn.enclosing
	return fn
}

func (c *Compiler) chunk() *value.Chunk { return &c.currFn.function.Chunk }

// --- token stream ---

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool { return c.current.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- diagnostics & panic-mode recovery ---

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.current, message) }
func (c *Compiler) error(message string)          { c.errorAt(c.previous, message) }

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.log.WithFields(logrus.Fields{
		"line":  tok.Line,
		"token": tok.Type,
	}).Debug("parse error, entering panic mode")

	var where string
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		where = ""
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	c.errs = multierror.Append(c.errs, fmt.Errorf("[line %d] Error%s: %s", tok.Line, where, message))
}

// synchronize discards tokens until a likely statement boundary: the token
// after a ';', or the next token starting a declaration/statement.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			c.logSynchronized()
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			c.logSynchronized()
			return
		}
		c.advance()
	}
	c.logSynchronized()
}

func (c *Compiler) logSynchronized() {
	c.log.WithFields(logrus.Fields{
		"line":  c.current.Line,
		"token": c.current.Type,
	}).Debug("panic mode synchronized")
}

// --- emission helpers ---

func (c *Compiler) emitByte(b byte) { c.chunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op bytecode.Opcode) { c.chunk().WriteOp(op, c.previous.Line) }
func (c *Compiler) emitOpByte(op bytecode.Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	if c.currFn.funcType == TypeInitializer {
		// `init` implicitly returns the instance (local slot 0, `this`).
		c.emitOpByte(bytecode.GetLocal, 0)
	} else {
		c.emitOp(bytecode.Nil)
	}
	c.emitOp(bytecode.Return)
}

func (c *Compiler) emitConstant(v value.Value) {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.error(err.Error())
		return
	}
	c.emitOpByte(bytecode.Constant, idx)
}

// emitJump writes a jump opcode with a placeholder 16-bit operand and
// returns the operand's offset, to be patched once the target is known.
func (c *Compiler) emitJump(op bytecode.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.Loop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) identifierConstant(tok token.Token) byte {
	str := c.alloc.InternString([]byte(tok.Lexeme))
	idx, err := c.chunk().AddConstant(value.StringVal(str))
	if err != nil {
		c.error(err.Error())
		return 0
	}
	return idx
}

func identifiersEqual(a, b token.Token) bool { return a.Lexeme == b.Lexeme }
