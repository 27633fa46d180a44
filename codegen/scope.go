package codegen

import (
	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/types"
)

// Variable is the storage backing a source name: a stack slot in the
// current function and the type of the value it holds.
type Variable struct {
	Name string
	Slot *ir.InstAlloca
	Type lltypes.Type
	Decl types.Position
}

type scope struct {
	order []string
	vars  map[string]*Variable
}

func newScope() *scope {
	return &scope{vars: make(map[string]*Variable)}
}

// scopeStack implements lexical shadowing: lookups go from the innermost
// scope outwards and return the first match.
type scopeStack struct {
	scopes []*scope
}

func (s *scopeStack) push() {
	s.scopes = append(s.scopes, newScope())
}

func (s *scopeStack) pop() {
	if len(s.scopes) == 0 {
		panic("codegen: pop of an empty scope stack")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *scopeStack) depth() int {
	return len(s.scopes)
}

func (s *scopeStack) top() *scope {
	if len(s.scopes) == 0 {
		panic("codegen: no scope to declare into")
	}
	return s.scopes[len(s.scopes)-1]
}

// declare only collides with names of the innermost scope; outer names are
// shadowed.
func (s *scopeStack) declare(v *Variable) *errors.Error {
	top := s.top()
	if prev, ok := top.vars[v.Name]; ok {
		return errors.Report(errors.RedeclaredInScope, v.Decl, "variable '%s' is already declared in this scope", v.Name).
			WithNote(prev.Decl, "previous declaration of '%s'", v.Name)
	}
	top.vars[v.Name] = v
	top.order = append(top.order, v.Name)
	return nil
}

func (s *scopeStack) resolve(name string) *Variable {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].vars[name]; ok {
			return v
		}
	}
	return nil
}
