package codegen

import (
	"encoding/json"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/nalgeon/be"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/eval"
	"github.com/pontaoski/minic/parser"
)

func lower(t *testing.T, src string, s Settings) (*ir.Module, error) {
	t.Helper()
	prog, err := parser.ParseString("test.mc", src)
	be.Err(t, err, nil)
	return Codegen(prog, s)
}

func funcNamed(m *ir.Module, name string) *ir.Func {
	for _, fn := range m.Funcs {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

func countInsts[T ir.Instruction](b *ir.Block) int {
	n := 0
	for _, inst := range b.Insts {
		if _, ok := inst.(T); ok {
			n++
		}
	}
	return n
}

const addProgram = `
function add(x: int, y: int) -> int { return x + y; }
function main() -> int { return add(2, 3); }
`

func TestAddFunctionShape(t *testing.T) {
	m, err := lower(t, addProgram, Settings{})
	be.Err(t, err, nil)

	add := funcNamed(m, "add")
	be.True(t, add != nil)
	be.Equal(t, len(add.Params), 2)
	be.Equal(t, len(add.Blocks), 1)

	entry := add.Blocks[0]
	be.Equal(t, countInsts[*ir.InstAlloca](entry), 2)
	be.Equal(t, countInsts[*ir.InstLoad](entry), 2)
	be.Equal(t, countInsts[*ir.InstAdd](entry), 1)
	_, isRet := entry.Term.(*ir.TermRet)
	be.True(t, isRet)

	ret, err := eval.New(m).Call("main")
	be.Err(t, err, nil)
	be.Equal(t, ret, eval.Int(5))
}

func TestArityMismatchEmitsNoCall(t *testing.T) {
	m, err := lower(t, `
extern function sin(x: float) -> float;
function main() -> float { return sin(1.0, 2.0); }
`, Settings{})

	diags := errors.All(err)
	be.Equal(t, len(diags), 1)
	be.Equal(t, diags[0].Kind, errors.ArityMismatch)
	be.Equal(t, diags[0].Expected, 1)
	be.Equal(t, diags[0].Got, 2)
	be.Equal(t, diags[0].Location.Line, 3)

	for _, fn := range m.Funcs {
		for _, b := range fn.Blocks {
			be.Equal(t, countInsts[*ir.InstCall](b), 0)
		}
	}
}

func TestAssignmentIsEvaluatedBeforeRightOperand(t *testing.T) {
	m, err := lower(t, `
function main() -> int {
    var a: int = 1;
    return (a = 3) + a;
}
`, Settings{})
	be.Err(t, err, nil)

	entry := funcNamed(m, "main").Blocks[0]
	storeAt, loadAt := -1, -1
	for i, inst := range entry.Insts {
		switch inst := inst.(type) {
		case *ir.InstStore:
			if c, ok := inst.Src.(*constant.Int); ok && c.X.Int64() == 3 {
				storeAt = i
			}
		case *ir.InstLoad:
			loadAt = i
		}
	}
	be.True(t, storeAt >= 0)
	be.True(t, storeAt < loadAt)

	ret, err := eval.New(m).Call("main")
	be.Err(t, err, nil)
	be.Equal(t, ret, eval.Int(6))
}

func TestEveryBlockIsTerminated(t *testing.T) {
	m, err := lower(t, `
function early() -> int {
    return 1;
    return 2;
    var x: int = 3;
}
function fallthrough() -> float { var y: float = 1.0; }
function nothing() { }
function main() -> int { return early(); }
`, Settings{})
	be.Err(t, err, nil)

	for _, fn := range m.Funcs {
		for _, b := range fn.Blocks {
			be.True(t, b.Term != nil)
		}
	}
	be.Equal(t, len(funcNamed(m, "early").Blocks), 3)
}

func TestScopeStackIsBalanced(t *testing.T) {
	for _, src := range []string{
		addProgram,
		`function main() -> int { { var a: int = 1; { return b; } } }`,
		`function main() -> int { var a: int; var a: int; }`,
	} {
		prog, err := parser.ParseString("test.mc", src)
		be.Err(t, err, nil)

		c := newCtx(Settings{})
		c.lowerProgram(prog)
		be.Equal(t, c.names.depth(), 0)
	}
}

func TestFailedFunctionBecomesDeclaration(t *testing.T) {
	m, err := lower(t, `
function good() -> int { return 1; }
function bad() -> int { return missing; }
`, Settings{})
	be.Equal(t, len(errors.All(err)), 1)

	be.Equal(t, len(funcNamed(m, "good").Blocks), 1)
	be.Equal(t, len(funcNamed(m, "bad").Blocks), 0)
}

func TestStopOnFirstError(t *testing.T) {
	src := `
function a() -> int { return x; }
function b() -> int { return y; }
`
	_, err := lower(t, src, Settings{})
	be.Equal(t, len(errors.All(err)), 2)

	_, err = lower(t, src, Settings{StopOnFirstError: true})
	diags := errors.All(err)
	be.Equal(t, len(diags), 1)
	be.Equal(t, diags[0].Location.Line, 2)
}

func TestExternLinkage(t *testing.T) {
	m, err := lower(t, `
extern function cos(x: float) -> float;
function main() -> float { return cos(0.0); }
`, Settings{})
	be.Err(t, err, nil)

	cos := funcNamed(m, "cos")
	be.Equal(t, cos.Linkage, enum.LinkageExternal)
	be.Equal(t, len(cos.Blocks), 0)
	be.Equal(t, funcNamed(m, "main").Linkage, enum.LinkageNone)
}

func TestRepeatedExtern(t *testing.T) {
	_, err := lower(t, `
extern function sqrt(x: float) -> float;
extern function sqrt(y: float) -> float;
`, Settings{})
	be.Err(t, err, nil)

	_, err = lower(t, `
extern function sqrt(x: float) -> float;
extern function sqrt(x: int) -> float;
`, Settings{})
	kind, ok := errors.KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, errors.RedeclaredInScope)
	be.Equal(t, len(errors.All(err)[0].Notes), 1)
}

func TestImportedSignatures(t *testing.T) {
	m, err := lower(t, `function main() -> int { return twice(2); }`, Settings{
		Imports: []*Signature{{
			Name:    "twice",
			Params:  []Param{{Name: "x", Type: IntName}},
			Returns: IntName,
		}},
	})
	be.Err(t, err, nil)
	be.Equal(t, funcNamed(m, "twice").Linkage, enum.LinkageExternal)

	mach := eval.New(m)
	mach.Externs["twice"] = eval.Extern{
		Params:  []lltypes.Type{lltypes.I64},
		Returns: lltypes.I64,
		Impl: func(args []eval.Value) (eval.Value, error) {
			return eval.Int(args[0].Int * 2), nil
		},
	}
	ret, err := mach.Call("main")
	be.Err(t, err, nil)
	be.Equal(t, ret, eval.Int(4))
}

func TestIntArgumentsWidenToFloatParameters(t *testing.T) {
	m, err := lower(t, `
extern function sqrt(x: float) -> float;
function main() -> float {
    var n: int = 9;
    return sqrt(n) + sqrt(16);
}
`, Settings{})
	be.Err(t, err, nil)

	entry := funcNamed(m, "main").Blocks[0]
	be.Equal(t, countInsts[*ir.InstSIToFP](entry), 1)

	ret, err := eval.New(m).Call("main")
	be.Err(t, err, nil)
	be.Equal(t, ret, eval.Float(7))
}

func TestEntryPoint(t *testing.T) {
	m, err := lower(t, addProgram, Settings{})
	be.Err(t, err, nil)

	start := funcNamed(m, EntryPoint)
	be.True(t, start != nil)
	be.Equal(t, len(start.Blocks), 1)
	_, ok := start.Blocks[0].Term.(*ir.TermUnreachable)
	be.True(t, ok)

	m, err = lower(t, `function helper() -> int { return 1; }`, Settings{})
	be.Err(t, err, nil)
	be.True(t, funcNamed(m, EntryPoint) == nil)
}

func TestLibraryTypeInfo(t *testing.T) {
	prog, err := parser.ParseString("lib.mc", `
extern function sqrt(x: float) -> float;
function hyp(a: float, b: float) -> float { return sqrt(a * a + b * b); }
function main() -> int { return 0; }
`)
	be.Err(t, err, nil)

	r, err := Lower(prog, Settings{PackageName: "geo", Version: "1.2.0", IsLibrary: true})
	be.Err(t, err, nil)
	be.True(t, funcNamed(r.Module, EntryPoint) == nil)

	var global *ir.Global
	for _, g := range r.Module.Globals {
		if g.Name() == TypeInfoSymbol {
			global = g
		}
	}
	be.True(t, global != nil)
	be.True(t, global.Immutable)

	data := global.Init.(*constant.CharArray).X
	be.Equal(t, data[len(data)-1], byte(0))

	var info TypeInfo
	be.Err(t, json.Unmarshal(data[:len(data)-1], &info), nil)
	be.Equal(t, info.Package, "geo")
	be.Equal(t, info.Version, "1.2.0")
	be.Equal(t, len(info.Functions), 2)
	be.Equal(t, info.Functions[0].String(), "function hyp(a: float, b: float) -> float")
	be.Equal(t, r.TypeInfo.Functions[1].Name, "main")

	iface := r.TypeInfo.Interface()
	be.True(t, iface.Signatures[0].Extern)
	be.True(t, !r.TypeInfo.Functions[0].Extern)
}

func TestParameterNamedLikeBlock(t *testing.T) {
	m, err := lower(t, `function f(entry: int, dead: int) -> int { return entry; return dead; }`, Settings{})
	be.Err(t, err, nil)

	fn := funcNamed(m, "f")
	be.Equal(t, len(fn.Blocks), 2)
	be.True(t, fn.Blocks[0].Name() != "entry")
	be.True(t, fn.Blocks[1].Name() != "dead")
}

func TestVoidArgumentEmitsNoCall(t *testing.T) {
	m, err := lower(t, `
function nothing() { }
function id(x: int) -> int { return x; }
function main() -> int { return id(nothing()); }
`, Settings{})
	kind, ok := errors.KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, errors.TypeMismatch)
	be.Equal(t, len(funcNamed(m, "main").Blocks), 0)
}

func TestEntryPointNameIsReserved(t *testing.T) {
	src := `
function main() -> int { return 0; }
function _minic_start() { }
`
	m, err := lower(t, src, Settings{})
	kind, ok := errors.KindOf(err)
	be.True(t, ok)
	be.Equal(t, kind, errors.RedeclaredInScope)

	count := 0
	for _, fn := range m.Funcs {
		if fn.Name() == EntryPoint {
			count++
		}
	}
	be.Equal(t, count, 1)

	_, err = lower(t, src, Settings{IsLibrary: true})
	be.Err(t, err, nil)
}
