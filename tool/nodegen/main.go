// Command nodegen writes the marker methods that close the ast sum types.
//
//	nodegen <in.adt> <out.go> <package>
//
// Each declaration in the input names a sum type and its variants:
//
//	type Expression = IntegerLiteral | FloatLiteral;
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type TypeDecls struct {
	Declarations []*Declaration `@@*`
}

type Declaration struct {
	Name     string   `"type" @Ident "="`
	Variants []string `@Ident ( "|" @Ident )* ";"`
}

var parser = participle.MustBuild(&TypeDecls{})

func Parse(data []byte) (*TypeDecls, error) {
	decls := &TypeDecls{}
	if err := parser.ParseBytes(data, decls); err != nil {
		return nil, err
	}

	seen := map[string]string{}
	for _, decl := range decls.Declarations {
		for _, v := range decl.Variants {
			if prev, ok := seen[v]; ok && prev == decl.Name {
				return nil, fmt.Errorf("%s is listed twice in %s", v, decl.Name)
			}
			seen[v] = decl.Name
		}
	}
	return decls, nil
}

func GenerateDecls(pkgname string, t *TypeDecls) string {
	f := NewFile(pkgname)
	f.HeaderComment("Code generated by nodegen. DO NOT EDIT.")

	for _, decl := range t.Declarations {
		for _, it := range decl.Variants {
			f.Func().Params(Id("v").Id(it)).Id("is_" + decl.Name).Params().Block()
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: nodegen <in.adt> <out.go> <package>")
		os.Exit(2)
	}
	in, out, pkgname := os.Args[1], os.Args[2], os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	decls, err := Parse(inData)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateDecls(pkgname, decls)), 0o644)
	if err != nil {
		panic(err)
	}
}
