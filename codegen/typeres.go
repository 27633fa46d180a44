package codegen

import (
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/types"
)

const (
	IntName   = "int"
	FloatName = "float"
	VoidName  = "void"
)

var (
	Int   = lltypes.I64
	Float = lltypes.Double
	Void  = lltypes.Void
)

// typeResolver maps the closed set of source type names to LLVM scalar types.
type typeResolver struct {
	names map[string]lltypes.Type
}

func newTypeResolver() *typeResolver {
	return &typeResolver{
		names: map[string]lltypes.Type{
			IntName:   Int,
			FloatName: Float,
		},
	}
}

// resolve looks up a type usable for storage (variables and parameters).
func (r *typeResolver) resolve(name string, at types.Position) (lltypes.Type, *errors.Error) {
	if t, ok := r.names[name]; ok {
		return t, nil
	}
	if name == VoidName {
		return nil, errors.Report(errors.UnknownType, at, "'%s' can only be used as a return type", name)
	}
	return nil, errors.Report(errors.UnknownType, at, "unknown type '%s'", name)
}

func (r *typeResolver) resolveReturn(name string, at types.Position) (lltypes.Type, *errors.Error) {
	if name == VoidName || name == "" {
		return Void, nil
	}
	return r.resolve(name, at)
}

func (r *typeResolver) nameOf(t lltypes.Type) string {
	switch {
	case t == nil:
		return "<nil>"
	case lltypes.IsVoid(t):
		return VoidName
	case t.Equal(Int):
		return IntName
	case t.Equal(Float):
		return FloatName
	}
	return t.String()
}

func zeroOf(t lltypes.Type) value.Value {
	switch t := t.(type) {
	case *lltypes.IntType:
		return constant.NewInt(t, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(t, 0)
	}
	return nil
}
