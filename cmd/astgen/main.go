// Command astgen generates the marker-method boilerplate for
// internal/ast's sum types from a small declaration file, the same
// way tawago's tool/main.go generated its own ast.go boilerplate.
//
// Usage: astgen <input.otterast> <output.go> <package>
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/participle"
	. "github.com/dave/jennifer/jen"
)

// SumDecls parses a file of the form:
//
//	sum Type = NamedType | FunctionType | StructType;
//	sum Expression = LitExpr | VarExpr | CallExpr;
type SumDecls struct {
	Declarations []*Declaration `@@*`
}

type Declaration struct {
	Family   string   `"sum" @Ident "="`
	Variants []string `@Ident ("|" @Ident)*`
	_        struct{} `";"`
}

func generate(pkgname string, decls *SumDecls) string {
	f := NewFile(pkgname)
	f.Comment("Code generated by cmd/astgen; DO NOT EDIT.")

	for _, d := range decls.Declarations {
		for _, variant := range d.Variants {
			f.Func().Params(Id("v").Id(variant)).Id("is_" + d.Family).Params().Block()
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: astgen <input.otterast> <output.go> <package>")
		os.Exit(2)
	}

	parser := participle.MustBuild(&SumDecls{})

	in, out, pkgname := os.Args[1], os.Args[2], os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	decls := SumDecls{}
	if err := parser.ParseBytes(inData, &decls); err != nil {
		panic(err)
	}

	if err := ioutil.WriteFile(out, []byte(generate(pkgname, &decls)), os.ModePerm); err != nil {
		panic(err)
	}
}
