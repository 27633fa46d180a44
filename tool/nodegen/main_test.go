package main

import (
	"os"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestGenerateDecls(t *testing.T) {
	decls, err := Parse([]byte(`
type Expression = IntegerLiteral | Identifier;
type Statement = Block;
`))
	be.Err(t, err, nil)
	be.Equal(t, len(decls.Declarations), 2)
	be.Equal(t, decls.Declarations[0].Variants, []string{"IntegerLiteral", "Identifier"})

	out := GenerateDecls("ast", decls)
	be.True(t, strings.HasPrefix(out, "// Code generated by nodegen. DO NOT EDIT."))
	be.True(t, strings.Contains(out, "package ast"))
	be.True(t, strings.Contains(out, "func (v IntegerLiteral) is_Expression() {}"))
	be.True(t, strings.Contains(out, "func (v Identifier) is_Expression() {}"))
	be.True(t, strings.Contains(out, "func (v Block) is_Statement() {}"))
}

func TestParseRejectsDuplicateVariant(t *testing.T) {
	_, err := Parse([]byte(`type Expression = Identifier | Identifier;`))
	be.True(t, err != nil)
}

// The checked-in ast markers must cover every variant in nodes.adt.
func TestCheckedInMarkersAreCurrent(t *testing.T) {
	adt, err := os.ReadFile("../../ast/nodes.adt")
	be.Err(t, err, nil)
	decls, err := Parse(adt)
	be.Err(t, err, nil)

	current, err := os.ReadFile("../../ast/nodes_gen.go")
	be.Err(t, err, nil)

	for _, decl := range decls.Declarations {
		for _, v := range decl.Variants {
			method := "func (v " + v + ") is_" + decl.Name + "() {}"
			be.True(t, strings.Contains(string(current), method))
		}
	}
}
