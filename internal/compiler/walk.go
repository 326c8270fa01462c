package compiler

import (
	"gopkg.spork.dev/compiler.go/internal/idl"
)

// walkProgram visits every node depth first with parents before children.
// depth is 0 for top level expressions.
func walkProgram(program *idl.Program, f func(node idl.Node, depth int)) {
	for _, expr := range program.Exprs {
		walkExpr(expr, 0, f)
	}
}

func walkExpr(expr idl.Expr, depth int, f func(idl.Node, int)) {
	f(expr, depth)
	switch e := expr.(type) {
	case *idl.ExprLet:
		walkExpr(e.Value, depth+1, f)
	case *idl.ExprIf:
		walkExpr(e.Cond, depth+1, f)
		walkExpr(e.Then, depth+1, f)
		walkExpr(e.Else, depth+1, f)
	case *idl.ExprFunction:
		walkParams(e.Params, depth+1, f)
		walkType(e.Returns, depth+1, f)
		walkExpr(e.Body, depth+1, f)
	case *idl.ExprStruct:
		walkParams(e.Fields, depth+1, f)
	case *idl.ExprInterface:
		walkParams(e.Methods, depth+1, f)
	}
}

func walkParams(params []idl.Param, depth int, f func(idl.Node, int)) {
	for offset := range params {
		param := &params[offset]
		f(param, depth)
		walkType(param.Type, depth+1, f)
	}
}

func walkType(typeExpr idl.TypeExpr, depth int, f func(idl.Node, int)) {
	f(typeExpr, depth)
	if tuple, ok := typeExpr.(*idl.TypeTuple); ok {
		for _, element := range tuple.Elements {
			walkType(element, depth+1, f)
		}
	}
}

func countNodes(program *idl.Program) int {
	count := 0
	walkProgram(program, func(idl.Node, int) {
		count = count + 1
	})
	return count
}
