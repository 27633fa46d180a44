package codegen

import (
	"fmt"
	"math/big"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/minic/ast"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/types"
)

type Settings struct {
	PackageName string
	Version     string
	// IsLibrary skips the entry point and embeds type info instead.
	IsLibrary bool
	// StopOnFirstError stops after the first failing top-level declaration
	// instead of collecting one error per declaration.
	StopOnFirstError bool
	// Imports are registered as externs before the program's own
	// declarations.
	Imports []*Signature
}

// cursor is the insertion point: the block new instructions go to.
type cursor struct {
	fn    *ir.Func
	block *ir.Block
}

func (c cursor) terminated() bool {
	return c.block.Term != nil
}

// funcState is per-function bookkeeping, reset on every function.
type funcState struct {
	name    string
	entry   *ir.Block
	returns lltypes.Type
	locals  map[string]int
}

// localName hands out a unique LLVM local name for base within a function.
func (f *funcState) localName(base string) string {
	name := base
	for n := 1; f.locals[name] > 0; n++ {
		name = fmt.Sprintf("%s%d", base, n)
	}
	f.locals[name]++
	return name
}

type ctx struct {
	names    scopeStack
	sigs     *SignatureTable
	types    *typeResolver
	module   *ir.Module
	cur      cursor
	fn       *funcState
	settings Settings
}

func newCtx(s Settings) *ctx {
	return &ctx{
		sigs:     NewSignatureTable(),
		types:    newTypeResolver(),
		module:   ir.NewModule(),
		settings: s,
	}
}

// Codegen lowers prog into a new LLVM module. The module is returned even
// when lowering fails; functions whose bodies failed are left as bare
// declarations. The error, if any, is an errors.List.
func Codegen(prog *ast.Program, s Settings) (*ir.Module, error) {
	r, err := Lower(prog, s)
	return r.Module, err
}

type Result struct {
	Module   *ir.Module
	TypeInfo TypeInfo
}

// Lower is Codegen that also reports the program's exported signatures.
func Lower(prog *ast.Program, s Settings) (Result, error) {
	c := newCtx(s)
	errs := c.lowerProgram(prog)
	return Result{Module: c.module, TypeInfo: c.typeInfo()}, errs.Err()
}

func (c *ctx) lowerProgram(prog *ast.Program) (errs errors.List) {
	defer func() { errs.Sort() }()

	for _, sig := range c.settings.Imports {
		imported := *sig
		imported.Extern = true
		if _, err := c.declareSignature(&imported); err != nil {
			errs = append(errs, err)
			if c.settings.StopOnFirstError {
				return
			}
		}
	}

	// Signatures first, so bodies may call functions declared later.
	declared := make([]bool, len(prog.TopLevels))
	for i, tl := range prog.TopLevels {
		if _, err := c.declareTopLevel(tl); err != nil {
			errs = append(errs, err)
			if c.settings.StopOnFirstError {
				return
			}
			continue
		}
		declared[i] = true
	}

	var main *ir.Func
	for i, tl := range prog.TopLevels {
		decl, ok := tl.(ast.FunctionDeclaration)
		if !ok || !declared[i] {
			continue
		}

		fn, err := c.lowerFunction(decl)
		if err != nil {
			fn.Blocks = nil
			errs = append(errs, err)
			if c.settings.StopOnFirstError {
				return
			}
			continue
		}
		if decl.Name.Name == "main" && len(decl.Arguments) == 0 {
			main = fn
		}
	}

	if c.settings.IsLibrary {
		registerTypeInfo(c.module, c.typeInfo())
	} else if main != nil {
		addEntryPoint(c.module, main)
	}

	return
}

func (c *ctx) declareTopLevel(tl ast.TopLevel) (*ir.Func, *errors.Error) {
	switch decl := tl.(type) {
	case ast.ExternDeclaration:
		return c.declareSignature(signatureOf(decl.Name, decl.Arguments, decl.Returns, true))
	case ast.FunctionDeclaration:
		return c.declareSignature(signatureOf(decl.Name, decl.Arguments, decl.Returns, false))
	default:
		panic("unhandled")
	}
}

// declareSignature resolves the signature's types and registers it together
// with its LLVM function. Repeating an identical extern is allowed.
func (c *ctx) declareSignature(sig *Signature) (*ir.Func, *errors.Error) {
	if sig.Name == EntryPoint && !c.settings.IsLibrary {
		return nil, errors.Report(errors.RedeclaredInScope, sig.Pos, "'%s' is reserved for the program entry point", sig.Name)
	}
	if prev, fn, ok := c.sigs.Lookup(sig.Name); ok {
		if sig.Extern && prev.Extern && prev.Equal(sig) {
			return fn, nil
		}
		return nil, errors.Report(errors.RedeclaredInScope, sig.Pos, "function '%s' is already declared", sig.Name).
			WithNote(prev.Pos, "previous declaration of '%s'", sig.Name)
	}

	ret, err := c.types.resolveReturn(sig.Returns, sig.RetPos)
	if err != nil {
		return nil, err
	}

	var params []*ir.Param
	for _, p := range sig.Params {
		typ, err := c.types.resolve(p.Type, p.Pos)
		if err != nil {
			return nil, err
		}
		params = append(params, ir.NewParam(p.Name, typ))
	}

	fn := c.module.NewFunc(sig.Name, ret, params...)
	fn.Linkage = sig.Linkage()
	c.sigs.register(sig, fn)

	return fn, nil
}

func (c *ctx) lowerFunction(decl ast.FunctionDeclaration) (*ir.Func, *errors.Error) {
	sig, fn, ok := c.sigs.Lookup(decl.Name.Name)
	if !ok || sig.Extern {
		panic("codegen: function body without a registered signature: " + decl.Name.Name)
	}

	// Block labels share the local namespace with parameters.
	c.fn = &funcState{
		name:    decl.Name.Name,
		returns: fn.Sig.RetType,
		locals:  make(map[string]int),
	}
	for _, p := range fn.Params {
		c.fn.locals[p.Name()] = 1
	}
	c.fn.entry = fn.NewBlock(c.fn.localName("entry"))
	c.cur = cursor{fn: fn, block: c.fn.entry}
	defer func() { c.fn = nil }()

	c.names.push()
	defer c.names.pop()

	for i, arg := range decl.Arguments {
		param := fn.Params[i]
		v := c.allocate(arg.Name.Name, param.Type(), arg.Name.Pos)
		c.cur.block.NewStore(param, v.Slot)
		if err := c.names.declare(v); err != nil {
			return fn, err
		}
	}

	if err := c.lowerBlock(decl.Body); err != nil {
		return fn, err
	}

	c.terminateOpenBlocks(fn)

	return fn, nil
}

// terminateOpenBlocks gives every block that fell off the end of the body a
// return of the zero value.
func (c *ctx) terminateOpenBlocks(fn *ir.Func) {
	ret := fn.Sig.RetType
	for _, b := range fn.Blocks {
		if b.Term != nil {
			continue
		}
		if lltypes.IsVoid(ret) {
			b.NewRet(nil)
		} else {
			b.NewRet(zeroOf(ret))
		}
	}
}

// allocate reserves a stack slot in the entry block, which dominates every
// use in the function.
func (c *ctx) allocate(name string, typ lltypes.Type, at types.Position) *Variable {
	slot := c.fn.entry.NewAlloca(typ)
	slot.SetName(c.fn.localName(name + ".addr"))
	return &Variable{
		Name: name,
		Slot: slot,
		Type: typ,
		Decl: at,
	}
}

func (c *ctx) lowerBlock(b ast.Block) *errors.Error {
	c.names.push()
	defer c.names.pop()

	for _, stmt := range b.Statements {
		if c.cur.terminated() {
			dead := c.cur.fn.NewBlock(c.fn.localName("dead"))
			c.cur.block = dead
		}
		if err := c.lowerStatement(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (c *ctx) lowerStatement(s ast.Statement) *errors.Error {
	switch stmt := s.(type) {
	case ast.ExpressionStatement:
		_, err := c.lowerExpression(stmt.Expression)
		return err
	case ast.Block:
		return c.lowerBlock(stmt)
	case ast.ReturnStatement:
		return c.lowerReturn(stmt)
	case ast.VariableDeclaration:
		typ, err := c.types.resolve(stmt.Type.Name, stmt.Type.Pos)
		if err != nil {
			return err
		}

		v := c.allocate(stmt.Name.Name, typ, stmt.Name.Pos)
		if err := c.names.declare(v); err != nil {
			return err
		}

		if stmt.Value == nil {
			return nil
		}
		val, err := c.lowerExpression(stmt.Value)
		if err != nil {
			return err
		}
		val, err = c.convert(val, typ, stmt.Value.Position(), "initializer of '"+v.Name+"'")
		if err != nil {
			return err
		}
		c.cur.block.NewStore(val, v.Slot)
		return nil
	default:
		panic("unhandled")
	}
}

func (c *ctx) lowerReturn(stmt ast.ReturnStatement) *errors.Error {
	ret := c.fn.returns

	if stmt.Value == nil {
		if !lltypes.IsVoid(ret) {
			return errors.Report(errors.TypeMismatch, stmt.Pos, "function '%s' must return a %s value", c.fn.name, c.types.nameOf(ret))
		}
		c.cur.block.NewRet(nil)
		return nil
	}

	val, err := c.lowerExpression(stmt.Value)
	if err != nil {
		return err
	}
	if lltypes.IsVoid(ret) {
		return errors.Report(errors.TypeMismatch, stmt.Pos, "function '%s' returns void but a value was returned", c.fn.name)
	}
	val, err = c.convert(val, ret, stmt.Value.Position(), "return value")
	if err != nil {
		return err
	}

	c.cur.block.NewRet(val)
	return nil
}

func (c *ctx) lowerExpression(e ast.Expression) (value.Value, *errors.Error) {
	switch expr := e.(type) {
	case ast.IntegerLiteral:
		return constant.NewInt(Int, expr.Value), nil
	case ast.FloatLiteral:
		return constant.NewFloat(Float, expr.Value), nil
	case ast.Identifier:
		v := c.names.resolve(expr.Name)
		if v == nil {
			return nil, errors.Report(errors.UndefinedVariable, expr.Pos, "undefined variable '%s'", expr.Name)
		}
		return c.cur.block.NewLoad(v.Type, v.Slot), nil
	case ast.BinaryOp:
		return c.lowerBinaryOp(expr)
	case ast.Assignment:
		val, err := c.lowerExpression(expr.Value)
		if err != nil {
			return nil, err
		}

		v := c.names.resolve(expr.To.Name)
		if v == nil {
			return nil, errors.Report(errors.UndefinedVariable, expr.To.Pos, "assignment to undefined variable '%s'", expr.To.Name)
		}

		val, err = c.convert(val, v.Type, expr.Value.Position(), "assignment to '"+v.Name+"'")
		if err != nil {
			return nil, err
		}
		c.cur.block.NewStore(val, v.Slot)

		return val, nil
	case ast.FunctionCall:
		return c.lowerCall(expr)
	default:
		panic("unhandled")
	}
}

// arith holds the integer and floating-point instruction for an operator.
type arith struct {
	ints   func(b *ir.Block, x, y value.Value) value.Value
	floats func(b *ir.Block, x, y value.Value) value.Value
}

var operators = map[string]arith{
	"+": {
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewAdd(x, y) },
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewFAdd(x, y) },
	},
	"-": {
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewSub(x, y) },
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewFSub(x, y) },
	},
	"*": {
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewMul(x, y) },
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewFMul(x, y) },
	},
	"/": {
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewSDiv(x, y) },
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewFDiv(x, y) },
	},
	"%": {
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewSRem(x, y) },
		func(b *ir.Block, x, y value.Value) value.Value { return b.NewFRem(x, y) },
	},
}

func (c *ctx) lowerBinaryOp(expr ast.BinaryOp) (value.Value, *errors.Error) {
	// Both sides are fully evaluated, left first, before combining.
	l, err := c.lowerExpression(expr.LHS)
	if err != nil {
		return nil, err
	}
	r, err := c.lowerExpression(expr.RHS)
	if err != nil {
		return nil, err
	}

	op, ok := operators[expr.Op]
	if !ok {
		return nil, errors.Report(errors.UnsupportedOperator, expr.Pos, "unsupported operator '%s' in %s", expr.Op, expr)
	}

	lt, rt := l.Type(), r.Type()
	switch {
	case lt.Equal(Int) && rt.Equal(Int):
		return op.ints(c.cur.block, l, r), nil
	case lt.Equal(Float) && rt.Equal(Float):
		return op.floats(c.cur.block, l, r), nil
	case lt.Equal(Int) && rt.Equal(Float):
		return op.floats(c.cur.block, c.widen(l, Float), r), nil
	case lt.Equal(Float) && rt.Equal(Int):
		return op.floats(c.cur.block, l, c.widen(r, Float)), nil
	}

	return nil, errors.Report(errors.TypeMismatch, expr.Pos, "operator '%s' cannot be applied to %s and %s",
		expr.Op, c.types.nameOf(lt), c.types.nameOf(rt))
}

func (c *ctx) lowerCall(expr ast.FunctionCall) (value.Value, *errors.Error) {
	sig, fn, ok := c.sigs.Lookup(expr.Function.Name)
	if !ok {
		return nil, errors.Report(errors.UndefinedFunction, expr.Function.Pos, "undefined function '%s'", expr.Function.Name)
	}

	var args []value.Value
	for _, arg := range expr.Arguments {
		val, err := c.lowerExpression(arg)
		if err != nil {
			return nil, err
		}
		if lltypes.IsVoid(val.Type()) {
			return nil, errors.Report(errors.TypeMismatch, arg.Position(), "void value used as argument %d of '%s'", len(args)+1, sig.Name)
		}
		args = append(args, val)
	}

	if len(args) != len(sig.Params) {
		return nil, errors.Arity(expr.Pos, sig.Name, len(sig.Params), len(args))
	}

	// Only the argument count is checked; ints passed to float parameters
	// are widened and anything else is handed to the backend unchanged.
	for i, param := range fn.Params {
		args[i] = c.widen(args[i], param.Type())
	}

	return c.cur.block.NewCall(fn, args...), nil
}

// widen converts an int value to a float type and returns anything else
// untouched. Constants are folded instead of emitting sitofp.
func (c *ctx) widen(v value.Value, to lltypes.Type) value.Value {
	if !v.Type().Equal(Int) || !lltypes.IsFloat(to) {
		return v
	}
	ft := to.(*lltypes.FloatType)
	if ci, ok := v.(*constant.Int); ok {
		f, _ := new(big.Float).SetInt(ci.X).Float64()
		return constant.NewFloat(ft, f)
	}
	return c.cur.block.NewSIToFP(v, ft)
}

func (c *ctx) convert(v value.Value, to lltypes.Type, at types.Position, what string) (value.Value, *errors.Error) {
	from := v.Type()
	if from.Equal(to) {
		return v, nil
	}
	if from.Equal(Int) && lltypes.IsFloat(to) {
		return c.widen(v, to), nil
	}
	return nil, errors.Report(errors.TypeMismatch, at, "cannot use %s value as %s in %s",
		c.types.nameOf(from), c.types.nameOf(to), what)
}
