// Package ast holds the syntax tree consumed by codegen. The three node
// categories are closed sum types: only this package can add variants.
package ast

//go:generate go run ../tool/nodegen nodes.adt nodes_gen.go ast

import "github.com/pontaoski/minic/types"

type Identifier struct {
	Name string
	Pos  types.Position
}

type Expression interface {
	is_Expression()
	Position() types.Position
}

type IntegerLiteral struct {
	Value int64
	Pos   types.Position
}

func (v IntegerLiteral) Position() types.Position { return v.Pos }

type FloatLiteral struct {
	Value float64
	Pos   types.Position
}

func (v FloatLiteral) Position() types.Position { return v.Pos }

func (v Identifier) Position() types.Position { return v.Pos }

type BinaryOp struct {
	Op  string
	LHS Expression
	RHS Expression
	Pos types.Position
}

func (v BinaryOp) Position() types.Position { return v.Pos }

type Assignment struct {
	To    Identifier
	Value Expression
	Pos   types.Position
}

func (v Assignment) Position() types.Position { return v.Pos }

type FunctionCall struct {
	Function  Identifier
	Arguments []Expression
	Pos       types.Position
}

func (v FunctionCall) Position() types.Position { return v.Pos }

type Statement interface {
	is_Statement()
	Position() types.Position
}

type ExpressionStatement struct {
	Expression Expression
}

func (v ExpressionStatement) Position() types.Position { return v.Expression.Position() }

type Block struct {
	Statements []Statement
	Pos        types.Position
}

func (v Block) Position() types.Position { return v.Pos }

// ReturnStatement with a nil Value is a bare "return;".
type ReturnStatement struct {
	Value Expression
	Pos   types.Position
}

func (v ReturnStatement) Position() types.Position { return v.Pos }

type VariableDeclaration struct {
	Type  Identifier
	Name  Identifier
	Value Expression
	Pos   types.Position
}

func (v VariableDeclaration) Position() types.Position { return v.Pos }

type Parameter struct {
	Name Identifier
	Type Identifier
}

type TopLevel interface {
	is_TopLevel()
	Position() types.Position
	Ident() Identifier
}

type ExternDeclaration struct {
	Name      Identifier
	Arguments []Parameter
	Returns   Identifier
	Pos       types.Position
}

func (v ExternDeclaration) Position() types.Position { return v.Pos }
func (v ExternDeclaration) Ident() Identifier        { return v.Name }

type FunctionDeclaration struct {
	Name      Identifier
	Arguments []Parameter
	Returns   Identifier
	Body      Block
	Pos       types.Position
}

func (v FunctionDeclaration) Position() types.Position { return v.Pos }
func (v FunctionDeclaration) Ident() Identifier        { return v.Name }

type Program struct {
	TopLevels []TopLevel
}
