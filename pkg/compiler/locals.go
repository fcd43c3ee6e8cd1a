package compiler

import (
	"github.com/emberlang/ember/pkg/bytecode"
	"github.com/emberlang/ember/pkg/token"
)

func (c *Compiler) beginScope() { c.currFn.scopeDepth++ }

// endScope pops every local declared in the scope being closed, emitting
// POP for each uncaptured local and CLOSE_UPVALUE for each one closures
// captured.
func (c *Compiler) endScope() {
	fc := c.currFn
	fc.scopeDepth--
	for len(fc.locals) > 0 && fc.locals[len(fc.locals)-1].depth > fc.scopeDepth {
		last := fc.locals[len(fc.locals)-1]
		if last.isCaptured {
			c.emitOp(bytecode.CloseUpvalue)
		} else {
			c.emitOp(bytecode.Pop)
		}
		fc.locals = fc.locals[:len(fc.locals)-1]
	}
}

// declareVariable registers the identifier just consumed as a new local in
// the current scope (a no-op at global scope, where variables are resolved by
// name, not slot).
func (c *Compiler) declareVariable() {
	if c.currFn.scopeDepth == 0 {
		return
	}
	name := c.previous
	fc := c.currFn
	for i := len(fc.locals) - 1; i >= 0; i-- {
		l := fc.locals[i]
		if l.depth != -1 && l.depth < fc.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	if len(c.currFn.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.currFn.locals = append(c.currFn.locals, local{name: name, depth: -1})
}

// markInitialized sets the most recently declared local's depth to the
// current scope, making it visible to reads. At global scope it does
// nothing (globals have no depth). Function parameters pass through it
// via defineVariable immediately after being declared.
func (c *Compiler) markInitialized() {
	fc := c.currFn
	if fc.scopeDepth == 0 {
		return
	}
	fc.locals[len(fc.locals)-1].depth = fc.scopeDepth
}

// resolveLocal searches the local array bottom-up (most-recently-declared
// first) for name, returning its slot index or -1.
func resolveLocal(fc *funcCompiler, name token.Token, onUninitialized func()) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if identifiersEqual(name, fc.locals[i].name) {
			if fc.locals[i].depth == -1 {
				onUninitialized()
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue resolves name against enclosing functions: if the
// enclosing compiler has it as a local, capture it directly (marking that
// local as captured so the VM knows to close it on scope exit); else
// recurse into the enclosing compiler's own upvalues. Duplicate upvalues
// (same index+isLocal) are coalesced to one slot.
func (c *Compiler) resolveUpvalue(fc *funcCompiler, name token.Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fc.enclosing, name, func() {
		c.error("Can't read local variable in its own initializer.")
	}); local != -1 {
		fc.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fc, byte(local), true)
	}
	if upvalue := c.resolveUpvalue(fc.enclosing, name); upvalue != -1 {
		return c.addUpvalue(fc, byte(upvalue), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fc *funcCompiler, index byte, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}
