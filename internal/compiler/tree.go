// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.spork.dev/compiler.go/internal/idl"
)

// WriteTreeText writes one line per node, indented by depth:
//
//	module /main.spork
//	  let x @1:0
//	    literal int 5 @1:8
func WriteTreeText(w io.Writer, module *idl.Module) error {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "module %s\n", module.URI)
	walkProgram(module.Program, func(node idl.Node, depth int) {
		_, _ = b.WriteString(strings.Repeat("  ", depth+1))
		_, _ = b.WriteString(describeNode(node))
		_, _ = fmt.Fprintf(&b, " @%s\n", node.Position())
	})
	_, err := io.WriteString(w, b.String())
	return err
}

func describeNode(node idl.Node) string {
	switch n := node.(type) {
	case *idl.ExprLiteral:
		return "literal " + n.Kind.String() + " " + literalText(n)
	case *idl.ExprIdentifier:
		return "identifier " + n.Name
	case *idl.ExprLet:
		return "let " + n.Name
	case *idl.ExprIf:
		return "if"
	case *idl.ExprFunction:
		return "fn"
	case *idl.ExprStruct:
		return "struct"
	case *idl.ExprInterface:
		return "interface"
	case *idl.Param:
		return "param " + n.Name
	case *idl.TypeNamed:
		if idl.BuiltinTypes[n.Name] {
			return "type " + n.Name + " (builtin)"
		}
		return "type " + n.Name
	case *idl.TypeTuple:
		return "tuple"
	default:
		return fmt.Sprintf("unknown %T", node)
	}
}

func literalText(n *idl.ExprLiteral) string {
	switch n.Kind {
	case idl.LiteralKindInt:
		return strconv.FormatInt(n.Int, 10)
	case idl.LiteralKindStr:
		return `"` + n.Text + `"`
	case idl.LiteralKindBool:
		return strconv.FormatBool(n.Bool)
	default:
		return ""
	}
}

// WriteTreeJSON writes module as a JSON object. Integer literal values are
// strings, the same way protojson encodes 64 bit integers.
func WriteTreeJSON(w io.Writer, module *idl.Module) error {
	exprs := make([]any, 0, len(module.Program.Exprs))
	for _, expr := range module.Program.Exprs {
		exprs = append(exprs, exprJSON(expr))
	}
	s, err := structpb.NewStruct(map[string]any{
		"uri":   module.URI,
		"exprs": exprs,
	})
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func nodeJSON(kind string, node idl.Node) map[string]any {
	loc := node.Position()
	return map[string]any{
		"node":   kind,
		"line":   int64(loc.Line),
		"column": int64(loc.Column),
	}
}

func exprJSON(expr idl.Expr) map[string]any {
	switch e := expr.(type) {
	case *idl.ExprLiteral:
		out := nodeJSON("literal", e)
		out["kind"] = e.Kind.String()
		switch e.Kind {
		case idl.LiteralKindInt:
			out["value"] = strconv.FormatInt(e.Int, 10)
		case idl.LiteralKindStr:
			out["value"] = e.Text
		case idl.LiteralKindBool:
			out["value"] = e.Bool
		}
		return out
	case *idl.ExprIdentifier:
		out := nodeJSON("identifier", e)
		out["name"] = e.Name
		return out
	case *idl.ExprLet:
		out := nodeJSON("let", e)
		out["name"] = e.Name
		out["value"] = exprJSON(e.Value)
		return out
	case *idl.ExprIf:
		out := nodeJSON("if", e)
		out["cond"] = exprJSON(e.Cond)
		out["then"] = exprJSON(e.Then)
		out["else"] = exprJSON(e.Else)
		return out
	case *idl.ExprFunction:
		out := nodeJSON("fn", e)
		out["params"] = paramsJSON(e.Params)
		out["returns"] = typeJSON(e.Returns)
		out["body"] = exprJSON(e.Body)
		return out
	case *idl.ExprStruct:
		out := nodeJSON("struct", e)
		out["fields"] = paramsJSON(e.Fields)
		return out
	case *idl.ExprInterface:
		out := nodeJSON("interface", e)
		out["methods"] = paramsJSON(e.Methods)
		return out
	default:
		return map[string]any{"node": fmt.Sprintf("unknown %T", expr)}
	}
}

func paramsJSON(params []idl.Param) []any {
	out := make([]any, 0, len(params))
	for offset := range params {
		param := &params[offset]
		p := nodeJSON("param", param)
		p["name"] = param.Name
		p["type"] = typeJSON(param.Type)
		out = append(out, p)
	}
	return out
}

func typeJSON(typeExpr idl.TypeExpr) map[string]any {
	switch t := typeExpr.(type) {
	case *idl.TypeNamed:
		out := nodeJSON("named", t)
		out["name"] = t.Name
		out["builtin"] = idl.BuiltinTypes[t.Name]
		return out
	case *idl.TypeTuple:
		out := nodeJSON("tuple", t)
		elements := make([]any, 0, len(t.Elements))
		for _, element := range t.Elements {
			elements = append(elements, typeJSON(element))
		}
		out["elements"] = elements
		return out
	default:
		return map[string]any{"node": fmt.Sprintf("unknown %T", typeExpr)}
	}
}
