// Package eval executes the subset of LLVM IR that codegen produces. It is
// the backend behind "minic run" and the end-to-end tests; anything outside
// that subset is reported as an error rather than guessed at.
package eval

import (
	"fmt"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

type Value struct {
	IsFloat bool
	Int     int64
	Float   float64
}

func Int(i int64) Value     { return Value{Int: i} }
func Float(f float64) Value { return Value{IsFloat: true, Float: f} }

func (v Value) String() string {
	if v.IsFloat {
		return fmt.Sprint(v.Float)
	}
	return fmt.Sprint(v.Int)
}

// Extern implements a declared-only function on the host. Params and
// Returns are the IR signature the declaration must have for Impl to be
// called with it.
type Extern struct {
	Params  []types.Type
	Returns types.Type
	Impl    func(args []Value) (Value, error)
}

// check rejects declarations whose signature differs from the host one.
func (e Extern) check(fn *ir.Func) error {
	sig := fn.Sig
	if len(sig.Params) != len(e.Params) {
		return fmt.Errorf("eval: extern %s declared with %d parameters, host implementation takes %d",
			fn.Name(), len(sig.Params), len(e.Params))
	}
	for i, p := range sig.Params {
		if !p.Equal(e.Params[i]) {
			return fmt.Errorf("eval: extern %s parameter %d declared as %s, host implementation takes %s",
				fn.Name(), i+1, p, e.Params[i])
		}
	}
	if !sig.RetType.Equal(e.Returns) {
		return fmt.Errorf("eval: extern %s declared to return %s, host implementation returns %s",
			fn.Name(), sig.RetType, e.Returns)
	}
	return nil
}

func unary(f func(float64) float64) Extern {
	return Extern{
		Params:  []types.Type{types.Double},
		Returns: types.Double,
		Impl: func(args []Value) (Value, error) {
			return Float(f(args[0].Float)), nil
		},
	}
}

// MathExterns are the libm functions available to programs by default.
func MathExterns() map[string]Extern {
	return map[string]Extern{
		"sin":   unary(math.Sin),
		"cos":   unary(math.Cos),
		"tan":   unary(math.Tan),
		"sqrt":  unary(math.Sqrt),
		"exp":   unary(math.Exp),
		"log":   unary(math.Log),
		"fabs":  unary(math.Abs),
		"floor": unary(math.Floor),
		"ceil":  unary(math.Ceil),
		"pow": {
			Params:  []types.Type{types.Double, types.Double},
			Returns: types.Double,
			Impl: func(args []Value) (Value, error) {
				return Float(math.Pow(args[0].Float, args[1].Float)), nil
			},
		},
	}
}

type Machine struct {
	module   *ir.Module
	funcs    map[string]*ir.Func
	Externs  map[string]Extern
	MaxDepth int
}

func New(m *ir.Module) *Machine {
	mach := &Machine{
		module:   m,
		funcs:    make(map[string]*ir.Func),
		Externs:  MathExterns(),
		MaxDepth: 10000,
	}
	for _, fn := range m.Funcs {
		mach.funcs[fn.Name()] = fn
	}
	return mach
}

func (m *Machine) Call(name string, args ...Value) (Value, error) {
	fn, ok := m.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("eval: no function named %q", name)
	}
	return m.call(fn, args, 0)
}

type frame struct {
	values map[value.Value]Value
	slots  map[value.Value]*Value
}

func (f *frame) operand(v value.Value) (Value, error) {
	switch v := v.(type) {
	case *constant.Int:
		if !v.X.IsInt64() {
			return Value{}, fmt.Errorf("eval: integer constant %s out of range", v.X)
		}
		return Int(v.X.Int64()), nil
	case *constant.Float:
		x, _ := v.X.Float64()
		return Float(x), nil
	}
	if val, ok := f.values[v]; ok {
		return val, nil
	}
	return Value{}, fmt.Errorf("eval: use of undefined value %s", v.Ident())
}

func (f *frame) operands(x, y value.Value) (Value, Value, error) {
	a, err := f.operand(x)
	if err != nil {
		return Value{}, Value{}, err
	}
	b, err := f.operand(y)
	return a, b, err
}

func (m *Machine) call(fn *ir.Func, args []Value, depth int) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, fmt.Errorf("eval: %s expects %d arguments, got %d", fn.Name(), len(fn.Params), len(args))
	}

	if len(fn.Blocks) == 0 {
		ext, ok := m.Externs[fn.Name()]
		if !ok {
			return Value{}, fmt.Errorf("eval: no implementation for extern %s", fn.Name())
		}
		if err := ext.check(fn); err != nil {
			return Value{}, err
		}
		return ext.Impl(args)
	}

	if depth > m.MaxDepth {
		return Value{}, fmt.Errorf("eval: call depth exceeded %d in %s", m.MaxDepth, fn.Name())
	}

	f := &frame{
		values: make(map[value.Value]Value),
		slots:  make(map[value.Value]*Value),
	}
	for i, p := range fn.Params {
		f.values[p] = args[i]
	}

	// codegen never branches, so control starts and ends in the entry block.
	block := fn.Blocks[0]
	for _, inst := range block.Insts {
		if err := m.step(f, inst, depth); err != nil {
			return Value{}, fmt.Errorf("%s: %w", fn.Name(), err)
		}
	}

	switch term := block.Term.(type) {
	case *ir.TermRet:
		if term.X == nil {
			return Value{}, nil
		}
		return f.operand(term.X)
	case *ir.TermUnreachable:
		return Value{}, fmt.Errorf("eval: reached unreachable in %s", fn.Name())
	default:
		return Value{}, fmt.Errorf("eval: unsupported terminator %T in %s", block.Term, fn.Name())
	}
}

func (m *Machine) step(f *frame, inst ir.Instruction, depth int) error {
	switch inst := inst.(type) {
	case *ir.InstAlloca:
		slot := Value{IsFloat: types.IsFloat(inst.ElemType)}
		f.slots[inst] = &slot
	case *ir.InstStore:
		slot, ok := f.slots[inst.Dst]
		if !ok {
			return fmt.Errorf("eval: store to unknown slot %s", inst.Dst.Ident())
		}
		v, err := f.operand(inst.Src)
		if err != nil {
			return err
		}
		*slot = v
	case *ir.InstLoad:
		slot, ok := f.slots[inst.Src]
		if !ok {
			return fmt.Errorf("eval: load from unknown slot %s", inst.Src.Ident())
		}
		f.values[inst] = *slot
	case *ir.InstSIToFP:
		v, err := f.operand(inst.From)
		if err != nil {
			return err
		}
		f.values[inst] = Float(float64(v.Int))
	case *ir.InstCall:
		callee, ok := inst.Callee.(*ir.Func)
		if !ok {
			return fmt.Errorf("eval: indirect call to %s", inst.Callee.Ident())
		}
		var args []Value
		for _, arg := range inst.Args {
			v, err := f.operand(arg)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		ret, err := m.call(callee, args, depth+1)
		if err != nil {
			return err
		}
		f.values[inst] = ret
	default:
		return m.arith(f, inst)
	}
	return nil
}

func (m *Machine) arith(f *frame, inst ir.Instruction) error {
	var (
		x, y value.Value
		op   func(a, b Value) (Value, error)
	)

	intOp := func(fn func(a, b int64) int64) func(a, b Value) (Value, error) {
		return func(a, b Value) (Value, error) { return Int(fn(a.Int, b.Int)), nil }
	}
	floatOp := func(fn func(a, b float64) float64) func(a, b Value) (Value, error) {
		return func(a, b Value) (Value, error) { return Float(fn(a.Float, b.Float)), nil }
	}

	switch inst := inst.(type) {
	case *ir.InstAdd:
		x, y, op = inst.X, inst.Y, intOp(func(a, b int64) int64 { return a + b })
	case *ir.InstSub:
		x, y, op = inst.X, inst.Y, intOp(func(a, b int64) int64 { return a - b })
	case *ir.InstMul:
		x, y, op = inst.X, inst.Y, intOp(func(a, b int64) int64 { return a * b })
	case *ir.InstSDiv:
		x, y = inst.X, inst.Y
		op = func(a, b Value) (Value, error) {
			if b.Int == 0 {
				return Value{}, fmt.Errorf("eval: integer division by zero")
			}
			return Int(a.Int / b.Int), nil
		}
	case *ir.InstSRem:
		x, y = inst.X, inst.Y
		op = func(a, b Value) (Value, error) {
			if b.Int == 0 {
				return Value{}, fmt.Errorf("eval: integer remainder by zero")
			}
			return Int(a.Int % b.Int), nil
		}
	case *ir.InstFAdd:
		x, y, op = inst.X, inst.Y, floatOp(func(a, b float64) float64 { return a + b })
	case *ir.InstFSub:
		x, y, op = inst.X, inst.Y, floatOp(func(a, b float64) float64 { return a - b })
	case *ir.InstFMul:
		x, y, op = inst.X, inst.Y, floatOp(func(a, b float64) float64 { return a * b })
	case *ir.InstFDiv:
		x, y, op = inst.X, inst.Y, floatOp(func(a, b float64) float64 { return a / b })
	case *ir.InstFRem:
		x, y, op = inst.X, inst.Y, floatOp(math.Mod)
	default:
		return fmt.Errorf("eval: unsupported instruction %T", inst)
	}

	a, b, err := f.operands(x, y)
	if err != nil {
		return err
	}
	v, err := op(a, b)
	if err != nil {
		return err
	}
	f.values[inst.(value.Value)] = v
	return nil
}
