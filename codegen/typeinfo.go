package codegen

import (
	"encoding/json"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
)

// TypeInfoSymbol is the global holding a library's exported signatures.
const TypeInfoSymbol = "__minic_types"

type TypeInfo struct {
	Package   string       `json:"package"`
	Version   string       `json:"version,omitempty"`
	Functions []*Signature `json:"functions"`
}

func (c *ctx) typeInfo() TypeInfo {
	t := TypeInfo{
		Package: c.settings.PackageName,
		Version: c.settings.Version,
	}
	for _, sig := range c.sigs.Signatures() {
		if sig.Extern {
			continue
		}
		if _, fn, _ := c.sigs.Lookup(sig.Name); len(fn.Blocks) == 0 {
			continue
		}
		t.Functions = append(t.Functions, sig)
	}
	return t
}

func registerTypeInfo(m *ir.Module, t TypeInfo) {
	data, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}

	g := m.NewGlobalDef(TypeInfoSymbol, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
}

// Interface returns the exported surface of a lowered program as imported
// signatures for other builds.
func (t TypeInfo) Interface() Interface {
	i := Interface{Package: t.Package, Version: t.Version}
	for _, sig := range t.Functions {
		imported := *sig
		imported.Extern = true
		i.Signatures = append(i.Signatures, &imported)
	}
	return i
}
