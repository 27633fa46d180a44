package codegen

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/nalgeon/be"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/types"
)

func variable(name string, line int) *Variable {
	return &Variable{
		Name: name,
		Slot: ir.NewAlloca(Int),
		Type: Int,
		Decl: types.Position{Line: line, Column: 1},
	}
}

func TestScopeShadowing(t *testing.T) {
	var s scopeStack
	s.push()
	outer := variable("x", 1)
	be.True(t, s.declare(outer) == nil)

	s.push()
	be.True(t, s.resolve("x") == outer)

	inner := variable("x", 2)
	be.True(t, s.declare(inner) == nil)
	be.True(t, s.resolve("x") == inner)

	s.pop()
	be.True(t, s.resolve("x") == outer)
	be.True(t, s.resolve("y") == nil)

	s.pop()
	be.Equal(t, s.depth(), 0)
	be.True(t, s.resolve("x") == nil)
}

func TestScopeRedeclaration(t *testing.T) {
	var s scopeStack
	s.push()
	be.True(t, s.declare(variable("x", 1)) == nil)

	err := s.declare(variable("x", 4))
	be.True(t, err != nil)
	be.Equal(t, err.Kind, errors.RedeclaredInScope)
	be.Equal(t, err.Location.Line, 4)
	be.Equal(t, len(err.Notes), 1)
	be.Equal(t, err.Notes[0].Location.Line, 1)
}

// innermostNames lists the innermost scope's names in declaration order.
func innermostNames(s *scopeStack) []string {
	if s.depth() == 0 {
		return nil
	}
	return s.top().order
}

func TestScopeNamesInDeclarationOrder(t *testing.T) {
	var s scopeStack
	be.True(t, innermostNames(&s) == nil)

	s.push()
	for i, name := range []string{"c", "a", "b"} {
		be.True(t, s.declare(variable(name, i+1)) == nil)
	}
	s.push()
	be.True(t, s.declare(variable("d", 4)) == nil)

	be.Equal(t, innermostNames(&s), []string{"d"})
	s.pop()
	be.Equal(t, innermostNames(&s), []string{"c", "a", "b"})
}

func TestScopePopEmptyPanics(t *testing.T) {
	defer func() {
		be.True(t, recover() != nil)
	}()

	var s scopeStack
	s.pop()
}
