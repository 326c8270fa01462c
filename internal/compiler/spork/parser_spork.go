// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package spork

import (
	"context"
	"fmt"
	"strconv"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/iter"
)

// ParserSpork builds a syntax tree from the tokens of a Spork source file.
// Parsing stops at the first error.
type ParserSpork struct {
	reporter exc.Reporter
}

var _ idl.Parser = (*ParserSpork)(nil)

func NewParserSpork(reporter exc.Reporter) *ParserSpork {
	if reporter == nil {
		reporter = exc.NewReporter(nil)
	}
	return &ParserSpork{reporter: reporter}
}

func (self *ParserSpork) prepareParse(ctx context.Context, f idl.LexerFile) (*parserSporkTokens, error) {
	tokens, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	return &parserSporkTokens{
		reporter: self.reporter,
		uri:      f.Path(ctx),
		tokens:   tokens,
	}, nil
}

func (self *ParserSpork) Parse(ctx context.Context, f idl.LexerFile) (*idl.Module, error) {
	p, err := self.prepareParse(ctx, f)
	if err != nil {
		return nil, err
	}
	program := p.ParseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return &idl.Module{
		URI:     p.uri,
		Program: program,
	}, nil
}

// ParseSource tokenizes and parses a complete source text. The returned error,
// if any, is the first LexError or ParseError encountered.
func ParseSource(uri string, source string) (*idl.Program, error) {
	reporter := exc.NewReporter(nil)
	p := &parserSporkTokens{
		reporter: reporter,
		uri:      uri,
		tokens:   NewTokenizer(iter.NewCursor(uri, source), reporter),
	}
	program := p.ParseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

type parserSporkTokens struct {
	reporter exc.Reporter
	uri      string
	tokens   idl.TokenStream
	// err is the first failure. Every production returns nil once it is set
	// and nothing else gets reported.
	err error
}

func (p *parserSporkTokens) reportAt(loc idl.Location, code string, message string) {
	if p.err != nil {
		return
	}
	e := exc.New(exc.Location{Location: loc, URI: p.uri}, code, message)
	_ = p.reporter.Report(e)
	p.err = e
}

// report anchors the failure at the lookahead token, or at the end of input.
func (p *parserSporkTokens) report(code string, message string) {
	p.reportAt(p.tokens.Location(), code, message)
}

func (p *parserSporkTokens) peek() *idl.Token {
	if p.err != nil {
		return nil
	}
	token, err := p.tokens.Peek()
	if err != nil {
		// the tokenizer has already reported it
		p.err = err
		return nil
	}
	return token
}

func (p *parserSporkTokens) advance() *idl.Token {
	if p.err != nil {
		return nil
	}
	token, err := p.tokens.Next()
	if err != nil {
		p.err = err
		return nil
	}
	return token
}

// reports an error if the current token isn't of the given type and, when
// value is not empty, doesn't have the given lexeme.
// advances on success
func (p *parserSporkTokens) expect(tokenType idl.TokenType, value string, message string) *idl.Token {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, message)
		return nil
	}
	if maybeToken.Type != tokenType || (value != "" && maybeToken.Value != value) {
		p.report(exc.CodeParseError, fmt.Sprintf("%s (found %q)", message, maybeToken.Value))
		return nil
	}
	return p.advance()
}

func (p *parserSporkTokens) expectPunctuation(value string, message string) *idl.Token {
	return p.expect(idl.TokenTypePunctuation, value, message)
}

func (p *parserSporkTokens) expectKeyword(value string, message string) *idl.Token {
	return p.expect(idl.TokenTypeKeyword, value, message)
}

func isPunctuation(t *idl.Token, value string) bool {
	return t != nil && t.Type == idl.TokenTypePunctuation && t.Value == value
}

// generic application of parsing comma-separated nodes up to and including
// the closing punctuation. The opening punctuation must already be consumed.
// Returns nil on failure and a non-nil, possibly empty, slice on success.
func applyOverCommaSeparatedList[N any](p *parserSporkTokens, parser func() *N, tClose string, trailingComma bool, what string) []N {
	values := []N{}

	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected end of input (expecting %s or %q)", what, tClose))
		return nil
	}
	if !isPunctuation(maybeToken, tClose) {
		for {
			maybeValue := parser()
			if maybeValue == nil {
				return nil
			}
			values = append(values, *maybeValue)

			if !isPunctuation(p.peek(), ",") {
				break
			}
			_ = p.advance()
			if trailingComma && isPunctuation(p.peek(), tClose) {
				break
			}
		}
	}

	if p.expectPunctuation(tClose, fmt.Sprintf("expected \",\" or %q after %s", tClose, what)) == nil {
		return nil
	}
	return values
}

// Program = { Expression }
func (p *parserSporkTokens) ParseProgram() *idl.Program {
	this := idl.Program{
		Exprs: []idl.Expr{},
	}
	for {
		maybeToken := p.peek()
		if maybeToken == nil {
			if p.err != nil {
				return nil
			}
			break
		}
		maybeExpr := p.parseExpression()
		if maybeExpr == nil {
			return nil
		}
		this.Exprs = append(this.Exprs, maybeExpr)
	}
	return &this
}

// Expression = Literal | Let | If | FunctionLiteral | Struct | Interface | Identifier
func (p *parserSporkTokens) parseExpression() idl.Expr {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting an expression)")
		return nil
	}
	switch maybeToken.Type {
	case idl.TokenTypeLiteral:
		maybeLiteral := p.parseLiteral()
		if maybeLiteral == nil {
			return nil
		}
		return maybeLiteral
	case idl.TokenTypeIdentifier:
		_ = p.advance()
		return &idl.ExprIdentifier{
			Loc:  maybeToken.Location,
			Name: maybeToken.Value,
		}
	case idl.TokenTypeKeyword:
		switch maybeToken.Value {
		case keywordLet:
			maybeLet := p.parseLet()
			if maybeLet == nil {
				return nil
			}
			return maybeLet
		case keywordIf:
			maybeIf := p.parseIf()
			if maybeIf == nil {
				return nil
			}
			return maybeIf
		case keywordFn:
			maybeFunction := p.parseFunction()
			if maybeFunction == nil {
				return nil
			}
			return maybeFunction
		case keywordStruct:
			maybeStruct := p.parseStruct()
			if maybeStruct == nil {
				return nil
			}
			return maybeStruct
		case keywordInterface:
			maybeInterface := p.parseInterface()
			if maybeInterface == nil {
				return nil
			}
			return maybeInterface
		}
	}
	p.report(exc.CodeParseError, fmt.Sprintf("cannot handle token %q (expecting an expression)", maybeToken.Value))
	return nil
}

// Literal = int | str | bool
func (p *parserSporkTokens) parseLiteral() *idl.ExprLiteral {
	maybeToken := p.expect(idl.TokenTypeLiteral, "", "expected a literal")
	if maybeToken == nil {
		return nil
	}
	this := idl.ExprLiteral{
		Loc:  maybeToken.Location,
		Kind: maybeToken.Literal,
	}
	switch maybeToken.Literal {
	case idl.LiteralKindInt:
		v, err := strconv.ParseInt(maybeToken.Value, 10, 64)
		if err != nil {
			p.reportAt(maybeToken.Location, exc.CodeInvalidNumber, fmt.Sprintf("integer literal %s is out of range", maybeToken.Value))
			return nil
		}
		this.Int = v
	case idl.LiteralKindStr:
		this.Text = maybeToken.Value[1 : len(maybeToken.Value)-1]
	case idl.LiteralKindBool:
		this.Bool = maybeToken.Value == "true"
	default:
		p.reportAt(maybeToken.Location, exc.CodeParseError, fmt.Sprintf("cannot handle literal %q", maybeToken.Value))
		return nil
	}
	return &this
}

// Let = "let" Identifier "=" Expression ";"
func (p *parserSporkTokens) parseLet() *idl.ExprLet {
	let := p.expectKeyword(keywordLet, `expected "let"`)
	if let == nil {
		return nil
	}
	name := p.expect(idl.TokenTypeIdentifier, "", `expected identifier after "let"`)
	if name == nil {
		return nil
	}
	if p.expect(idl.TokenTypeOperator, "=", `expected "=" after identifier`) == nil {
		return nil
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	if p.expectPunctuation(";", `all let statements must end with a ";"`) == nil {
		return nil
	}
	return &idl.ExprLet{
		Loc:   let.Location,
		Name:  name.Value,
		Value: value,
	}
}

// If = "if" Expression "{" Expression "}" "else" "{" Expression "}"
func (p *parserSporkTokens) parseIf() *idl.ExprIf {
	maybeIf := p.expectKeyword(keywordIf, `expected "if"`)
	if maybeIf == nil {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if p.expectPunctuation("{", `expected "{" after condition`) == nil {
		return nil
	}
	then := p.parseExpression()
	if then == nil {
		return nil
	}
	if p.expectPunctuation("}", `expected "}" to close the if branch`) == nil {
		return nil
	}
	if p.expectKeyword(keywordElse, `expected "else" after the if branch`) == nil {
		return nil
	}
	if p.expectPunctuation("{", `expected "{" after else`) == nil {
		return nil
	}
	otherwise := p.parseExpression()
	if otherwise == nil {
		return nil
	}
	if p.expectPunctuation("}", `expected "}" to close the else branch`) == nil {
		return nil
	}
	return &idl.ExprIf{
		Loc:  maybeIf.Location,
		Cond: cond,
		Then: then,
		Else: otherwise,
	}
}

// FunctionLiteral = "fn" "(" [ Param { "," Param } ] ")" "->" TypeExpr "{" Expression "}"
func (p *parserSporkTokens) parseFunction() *idl.ExprFunction {
	fn := p.expectKeyword(keywordFn, `expected "fn"`)
	if fn == nil {
		return nil
	}
	if p.expectPunctuation("(", `expected "(" to begin params`) == nil {
		return nil
	}
	params := applyOverCommaSeparatedList(p, p.parseParam, ")", false, "parameter")
	if params == nil {
		return nil
	}
	if p.expect(idl.TokenTypeOperator, "->", `expected "->" after params`) == nil {
		return nil
	}
	returns := p.parseType()
	if returns == nil {
		return nil
	}
	if p.expectPunctuation("{", `expected "{" to begin function body`) == nil {
		return nil
	}
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	if p.expectPunctuation("}", `expected "}" to close function body`) == nil {
		return nil
	}
	return &idl.ExprFunction{
		Loc:     fn.Location,
		Params:  params,
		Returns: returns,
		Body:    body,
	}
}

// Struct = "struct" "{" [ Param { "," Param } [ "," ] ] "}"
func (p *parserSporkTokens) parseStruct() *idl.ExprStruct {
	maybeStruct := p.expectKeyword(keywordStruct, `expected "struct"`)
	if maybeStruct == nil {
		return nil
	}
	if p.expectPunctuation("{", `expected "{" after struct`) == nil {
		return nil
	}
	fields := applyOverCommaSeparatedList(p, p.parseParam, "}", true, "field")
	if fields == nil {
		return nil
	}
	return &idl.ExprStruct{
		Loc:    maybeStruct.Location,
		Fields: fields,
	}
}

// Interface = "interface" "{" [ Param { "," Param } [ "," ] ] "}"
func (p *parserSporkTokens) parseInterface() *idl.ExprInterface {
	maybeInterface := p.expectKeyword(keywordInterface, `expected "interface"`)
	if maybeInterface == nil {
		return nil
	}
	if p.expectPunctuation("{", `expected "{" after interface`) == nil {
		return nil
	}
	methods := applyOverCommaSeparatedList(p, p.parseParam, "}", true, "method")
	if methods == nil {
		return nil
	}
	return &idl.ExprInterface{
		Loc:     maybeInterface.Location,
		Methods: methods,
	}
}

// Param = Identifier ":" TypeExpr
func (p *parserSporkTokens) parseParam() *idl.Param {
	name := p.expect(idl.TokenTypeIdentifier, "", "expected identifier")
	if name == nil {
		return nil
	}
	if p.expectPunctuation(":", `expected ":" type specifier`) == nil {
		return nil
	}
	maybeType := p.parseType()
	if maybeType == nil {
		return nil
	}
	return &idl.Param{
		Loc:  name.Location,
		Name: name.Value,
		Type: maybeType,
	}
}

// TypeExpr = Identifier | "Self" | "(" TypeExpr { "," TypeExpr } ")"
func (p *parserSporkTokens) parseType() idl.TypeExpr {
	maybeToken := p.peek()
	if maybeToken == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected end of input (expecting a type)")
		return nil
	}
	switch {
	case isPunctuation(maybeToken, "("):
		maybeTuple := p.parseTupleType()
		if maybeTuple == nil {
			return nil
		}
		return maybeTuple
	case maybeToken.Type == idl.TokenTypeIdentifier,
		maybeToken.Type == idl.TokenTypeKeyword && maybeToken.Value == keywordSelf:
		_ = p.advance()
		return &idl.TypeNamed{
			Loc:  maybeToken.Location,
			Name: maybeToken.Value,
		}
	}
	p.report(exc.CodeParseError, fmt.Sprintf("expected type name (found %q)", maybeToken.Value))
	return nil
}

func (p *parserSporkTokens) parseTupleType() *idl.TypeTuple {
	open := p.expectPunctuation("(", `expected "(" to begin tuple type`)
	if open == nil {
		return nil
	}
	if isPunctuation(p.peek(), ")") {
		p.report(exc.CodeParseError, "expected type name (a tuple type needs at least one element)")
		return nil
	}
	elements := applyOverCommaSeparatedList(p, p.parseTypeElement, ")", false, "tuple element")
	if elements == nil {
		return nil
	}
	return &idl.TypeTuple{
		Loc:      open.Location,
		Elements: elements,
	}
}

func (p *parserSporkTokens) parseTypeElement() *idl.TypeExpr {
	maybeType := p.parseType()
	if maybeType == nil {
		return nil
	}
	return &maybeType
}
