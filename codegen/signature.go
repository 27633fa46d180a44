package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/pontaoski/minic/ast"
	"github.com/pontaoski/minic/types"
	"github.com/vmihailenco/msgpack/v5"
)

type Param struct {
	Name string         `msgpack:"name" json:"name"`
	Type string         `msgpack:"type" json:"type"`
	Pos  types.Position `msgpack:"-" json:"-"`
}

// Signature is a declared function or extern. Types are kept as source
// names so signatures survive serialization.
type Signature struct {
	Name    string         `msgpack:"name" json:"name"`
	Params  []Param        `msgpack:"params" json:"params"`
	Returns string         `msgpack:"returns" json:"returns"`
	Extern  bool           `msgpack:"extern" json:"extern,omitempty"`
	Pos     types.Position `msgpack:"-" json:"-"`
	RetPos  types.Position `msgpack:"-" json:"-"`
}

func signatureOf(name ast.Identifier, args []ast.Parameter, returns ast.Identifier, extern bool) *Signature {
	sig := &Signature{
		Name:    name.Name,
		Returns: returns.Name,
		Extern:  extern,
		Pos:     name.Pos,
		RetPos:  returns.Pos,
	}
	for _, arg := range args {
		sig.Params = append(sig.Params, Param{Name: arg.Name.Name, Type: arg.Type.Name, Pos: arg.Type.Pos})
	}
	return sig
}

func (s *Signature) Linkage() enum.Linkage {
	if s.Extern {
		return enum.LinkageExternal
	}
	return enum.LinkageNone
}

// Equal compares the shape of two signatures, ignoring parameter names.
func (s *Signature) Equal(o *Signature) bool {
	if s.Name != o.Name || s.Returns != o.Returns || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i].Type != o.Params[i].Type {
			return false
		}
	}
	return true
}

func (s *Signature) String() string {
	var args []string
	for _, p := range s.Params {
		args = append(args, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	prefix := "function"
	if s.Extern {
		prefix = "extern function"
	}
	ret := s.Returns
	if ret == "" {
		ret = VoidName
	}
	return fmt.Sprintf("%s %s(%s) -> %s", prefix, s.Name, strings.Join(args, ", "), ret)
}

type signatureEntry struct {
	sig *Signature
	fn  *ir.Func
}

// SignatureTable holds every signature known to one lowering run.
type SignatureTable struct {
	entries map[string]signatureEntry
	order   []string
}

func NewSignatureTable() *SignatureTable {
	return &SignatureTable{entries: make(map[string]signatureEntry)}
}

func (t *SignatureTable) register(sig *Signature, fn *ir.Func) {
	if _, ok := t.entries[sig.Name]; !ok {
		t.order = append(t.order, sig.Name)
	}
	t.entries[sig.Name] = signatureEntry{sig, fn}
}

func (t *SignatureTable) Lookup(name string) (*Signature, *ir.Func, bool) {
	e, ok := t.entries[name]
	return e.sig, e.fn, ok
}

// Signatures returns all signatures in registration order.
func (t *SignatureTable) Signatures() []*Signature {
	var ret []*Signature
	for _, name := range t.order {
		ret = append(ret, t.entries[name].sig)
	}
	return ret
}

// Interface is the content of a .msig file: the callable surface of a
// compiled package, imported by other builds as externs.
type Interface struct {
	Package    string       `msgpack:"package"`
	Version    string       `msgpack:"version"`
	Signatures []*Signature `msgpack:"signatures"`
}

func WriteInterface(w io.Writer, i Interface) error {
	return msgpack.NewEncoder(w).Encode(&i)
}

func ReadInterface(r io.Reader) (Interface, error) {
	var i Interface
	if err := msgpack.NewDecoder(r).Decode(&i); err != nil {
		return Interface{}, fmt.Errorf("reading interface: %w", err)
	}
	for _, sig := range i.Signatures {
		sig.Extern = true
		sig.Pos = types.Position{Filename: "<import " + i.Package + ">"}
	}
	return i, nil
}
