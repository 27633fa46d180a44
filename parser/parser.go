// Package parser turns minic source text into an ast.Program.
package parser

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
	"github.com/pontaoski/minic/ast"
	"github.com/pontaoski/minic/types"
)

var grammar = participle.MustBuild(&program{},
	participle.Lexer(minicLexer),
	participle.UseLookahead(2),
)

type Parser struct {
	filename string
}

func NewParser(filename string) Parser {
	return Parser{filename}
}

func (p Parser) Parse(r io.Reader) (*ast.Program, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(data))
}

func (p Parser) ParseString(src string) (*ast.Program, error) {
	var tree program
	if err := grammar.ParseString(src, &tree); err != nil {
		return nil, fmt.Errorf("%s: %w", p.filename, err)
	}

	prog := &ast.Program{}
	for _, tl := range tree.TopLevels {
		prog.TopLevels = append(prog.TopLevels, p.topLevel(tl))
	}
	return prog, nil
}

func ParseString(filename, src string) (*ast.Program, error) {
	return NewParser(filename).ParseString(src)
}

func (p Parser) pos(pos lexer.Position) types.Position {
	return types.Position{Line: pos.Line, Column: pos.Column, Filename: p.filename}
}

func (p Parser) ident(id *ident) ast.Identifier {
	return ast.Identifier{Name: id.Name, Pos: p.pos(id.Pos)}
}

func (p Parser) params(params []*param) []ast.Parameter {
	var ret []ast.Parameter
	for _, param := range params {
		ret = append(ret, ast.Parameter{
			Name: p.ident(param.Name),
			Type: p.ident(param.Type),
		})
	}
	return ret
}

func (p Parser) returns(id *ident, at lexer.Position) ast.Identifier {
	if id == nil {
		return ast.Identifier{Name: "void", Pos: p.pos(at)}
	}
	return p.ident(id)
}

func (p Parser) topLevel(tl *topLevel) ast.TopLevel {
	switch {
	case tl.Extern != nil:
		decl := tl.Extern
		return ast.ExternDeclaration{
			Name:      p.ident(decl.Name),
			Arguments: p.params(decl.Params),
			Returns:   p.returns(decl.Returns, decl.Pos),
			Pos:       p.pos(decl.Pos),
		}
	case tl.Function != nil:
		decl := tl.Function
		return ast.FunctionDeclaration{
			Name:      p.ident(decl.Name),
			Arguments: p.params(decl.Params),
			Returns:   p.returns(decl.Returns, decl.Pos),
			Body:      p.block(decl.Body),
			Pos:       p.pos(decl.Pos),
		}
	}

	panic("unhandled")
}

func (p Parser) block(b *block) ast.Block {
	ret := ast.Block{Pos: p.pos(b.Pos)}
	for _, stmt := range b.Statements {
		ret.Statements = append(ret.Statements, p.statement(stmt))
	}
	return ret
}

func (p Parser) statement(s *statement) ast.Statement {
	switch {
	case s.Var != nil:
		decl := ast.VariableDeclaration{
			Type: p.ident(s.Var.Type),
			Name: p.ident(s.Var.Name),
			Pos:  p.pos(s.Var.Pos),
		}
		if s.Var.Value != nil {
			decl.Value = p.expression(s.Var.Value)
		}
		return decl
	case s.Return != nil:
		ret := ast.ReturnStatement{Pos: p.pos(s.Return.Pos)}
		if s.Return.Value != nil {
			ret.Value = p.expression(s.Return.Value)
		}
		return ret
	case s.Block != nil:
		return p.block(s.Block)
	case s.Expr != nil:
		return ast.ExpressionStatement{Expression: p.expression(s.Expr)}
	}

	panic("unhandled")
}

func (p Parser) expression(e *expression) ast.Expression {
	if e.Assign != nil {
		return ast.Assignment{
			To:    p.ident(e.Assign.To),
			Value: p.expression(e.Assign.Value),
			Pos:   p.pos(e.Assign.Pos),
		}
	}

	// Operators are left associative.
	expr := p.product(e.Sum.Left)
	for _, op := range e.Sum.Rest {
		expr = ast.BinaryOp{
			Op:  op.Op,
			LHS: expr,
			RHS: p.product(op.Right),
			Pos: p.pos(op.Pos),
		}
	}
	return expr
}

func (p Parser) product(prod *product) ast.Expression {
	expr := p.primary(prod.Left)
	for _, op := range prod.Rest {
		expr = ast.BinaryOp{
			Op:  op.Op,
			LHS: expr,
			RHS: p.primary(op.Right),
			Pos: p.pos(op.Pos),
		}
	}
	return expr
}

func (p Parser) primary(prim *primary) ast.Expression {
	switch {
	case prim.Float != nil:
		return ast.FloatLiteral{Value: *prim.Float, Pos: p.pos(prim.Pos)}
	case prim.Int != nil:
		return ast.IntegerLiteral{Value: *prim.Int, Pos: p.pos(prim.Pos)}
	case prim.Call != nil:
		call := ast.FunctionCall{
			Function: p.ident(prim.Call.Name),
			Pos:      p.pos(prim.Call.Pos),
		}
		for _, arg := range prim.Call.Args {
			call.Arguments = append(call.Arguments, p.expression(arg))
		}
		return call
	case prim.Ident != nil:
		return ast.Identifier{Name: *prim.Ident, Pos: p.pos(prim.Pos)}
	case prim.Sub != nil:
		return p.expression(prim.Sub)
	}

	panic("unhandled")
}
