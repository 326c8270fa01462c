// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

// Node is implemented by every AST type. Nodes form a tree: each parent owns
// its children and nothing is shared.
type Node interface {
	Position() Location
}

// Expr is the closed set of expression nodes.
type Expr interface {
	Node
	expr()
}

// TypeExpr is the closed set of type expression nodes.
type TypeExpr interface {
	Node
	typeExpr()
}

// Program is the ordered sequence of top-level expressions in a file.
type Program struct {
	Exprs []Expr
}

type ExprLiteral struct {
	Loc  Location
	Kind LiteralKind
	Int  int64
	Text string
	Bool bool
}

type ExprIdentifier struct {
	Loc  Location
	Name string
}

type ExprLet struct {
	Loc   Location
	Name  string
	Value Expr
}

// ExprIf always carries both branches; there is no valueless if.
type ExprIf struct {
	Loc  Location
	Cond Expr
	Then Expr
	Else Expr
}

type ExprFunction struct {
	Loc     Location
	Params  []Param
	Returns TypeExpr
	Body    Expr
}

type ExprStruct struct {
	Loc    Location
	Fields []Param
}

type ExprInterface struct {
	Loc     Location
	Methods []Param
}

// Param is a name and type pair. It is used for function parameters, struct
// fields and interface methods.
type Param struct {
	Loc  Location
	Name string
	Type TypeExpr
}

type TypeNamed struct {
	Loc  Location
	Name string
}

// TypeTuple is a parenthesized type list. A single element list is still a
// tuple.
type TypeTuple struct {
	Loc      Location
	Elements []TypeExpr
}

func (e *ExprLiteral) Position() Location    { return e.Loc }
func (e *ExprIdentifier) Position() Location { return e.Loc }
func (e *ExprLet) Position() Location        { return e.Loc }
func (e *ExprIf) Position() Location         { return e.Loc }
func (e *ExprFunction) Position() Location   { return e.Loc }
func (e *ExprStruct) Position() Location     { return e.Loc }
func (e *ExprInterface) Position() Location  { return e.Loc }
func (p *Param) Position() Location          { return p.Loc }
func (t *TypeNamed) Position() Location      { return t.Loc }
func (t *TypeTuple) Position() Location      { return t.Loc }

func (*ExprLiteral) expr()    {}
func (*ExprIdentifier) expr() {}
func (*ExprLet) expr()        {}
func (*ExprIf) expr()         {}
func (*ExprFunction) expr()   {}
func (*ExprStruct) expr()     {}
func (*ExprInterface) expr()  {}

func (*TypeNamed) typeExpr() {}
func (*TypeTuple) typeExpr() {}

// BuiltinTypes are the named types every program may reference without a
// declaration.
var BuiltinTypes = map[string]bool{
	"int":  true,
	"str":  true,
	"bool": true,
}
