package ast

import (
	"fmt"
	"strings"
)

func paramsToString(params []Parameter) string {
	var args []string
	for _, arg := range params {
		args = append(args, fmt.Sprintf("%s: %s", arg.Name.Name, arg.Type.Name))
	}
	return strings.Join(args, ", ")
}

func (f FunctionDeclaration) String() string {
	return fmt.Sprintf("function %s(%s) -> %s;", f.Name.Name, paramsToString(f.Arguments), f.Returns.Name)
}

func (f ExternDeclaration) String() string {
	return fmt.Sprintf("extern function %s(%s) -> %s;", f.Name.Name, paramsToString(f.Arguments), f.Returns.Name)
}

func (v BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", exprString(v.LHS), v.Op, exprString(v.RHS))
}

func exprString(e Expression) string {
	switch expr := e.(type) {
	case IntegerLiteral:
		return fmt.Sprint(expr.Value)
	case FloatLiteral:
		return fmt.Sprint(expr.Value)
	case Identifier:
		return expr.Name
	case BinaryOp:
		return expr.String()
	case Assignment:
		return fmt.Sprintf("%s = %s", expr.To.Name, exprString(expr.Value))
	case FunctionCall:
		var args []string
		for _, arg := range expr.Arguments {
			args = append(args, exprString(arg))
		}
		return fmt.Sprintf("%s(%s)", expr.Function.Name, strings.Join(args, ", "))
	}

	panic("unhandled")
}
