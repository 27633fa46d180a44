package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const EntryPoint = "_minic_start"

// addEntryPoint emits the process entry used with -nostdlib: call main and
// pass its result to the exit syscall.
func addEntryPoint(m *ir.Module, main *ir.Func) {
	opening := m.NewFunc(EntryPoint, types.Void)
	bloc := opening.NewBlock("_entry")

	var status value.Value = constant.NewInt(types.I64, 0)
	if main.Sig.RetType.Equal(Int) {
		status = bloc.NewCall(main)
	} else {
		bloc.NewCall(main)
	}

	exit := ir.NewInlineAsm(
		types.NewPointer(types.NewFunc(types.Void, types.I64)),
		`movq $0, %rdi; movq $$0x3C, %rax; syscall`,
		`r`,
	)
	exit.SideEffect = true

	bloc.NewCall(exit, status)
	bloc.NewUnreachable()
}
