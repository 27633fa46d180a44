// Package errors is the diagnostic reporter for lowering: every failure the
// engine produces is built by Report and carries a kind and a source line.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pontaoski/minic/types"
)

type Kind int

const (
	UndefinedVariable Kind = iota + 1
	UndefinedFunction
	ArityMismatch
	UnknownType
	UnsupportedOperator
	RedeclaredInScope
	TypeMismatch
)

func (k Kind) String() string {
	data := map[Kind]string{
		UndefinedVariable:   "UndefinedVariable",
		UndefinedFunction:   "UndefinedFunction",
		ArityMismatch:       "ArityMismatch",
		UnknownType:         "UnknownType",
		UnsupportedOperator: "UnsupportedOperator",
		RedeclaredInScope:   "RedeclaredInScope",
		TypeMismatch:        "TypeMismatch",
	}
	if s, ok := data[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Note struct {
	Location types.Position
	Message  string
}

type Error struct {
	Kind     Kind
	Message  string
	Location types.Position
	Notes    []Note

	// Expected and Got are only set for ArityMismatch.
	Expected int
	Got      int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Message)
}

// WithNote attaches a secondary location, e.g. the earlier declaration of a
// redeclared name.
func (e *Error) WithNote(at types.Position, msg string, fmts ...interface{}) *Error {
	e.Notes = append(e.Notes, Note{Location: at, Message: fmt.Sprintf(msg, fmts...)})
	return e
}

func Report(kind Kind, at types.Position, msg string, fmts ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(msg, fmts...),
		Location: at,
	}
}

func Arity(at types.Position, function string, expected, got int) *Error {
	e := Report(ArityMismatch, at, "function '%s' expects %d arguments, but got %d", function, expected, got)
	e.Expected = expected
	e.Got = got
	return e
}

// List is the result of lowering a whole program: one entry per failed
// top-level declaration.
type List []*Error

func (l List) Error() string {
	var msgs []string
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Location, l[j].Location
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns nil for an empty list so callers can return it directly.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// All flattens err into the diagnostics it carries.
func All(err error) []*Error {
	var list List
	if stderrors.As(err, &list) {
		return list
	}
	var single *Error
	if stderrors.As(err, &single) {
		return []*Error{single}
	}
	return nil
}

// KindOf returns the kind of the first diagnostic in err.
func KindOf(err error) (Kind, bool) {
	all := All(err)
	if len(all) == 0 {
		return 0, false
	}
	return all[0].Kind, true
}
