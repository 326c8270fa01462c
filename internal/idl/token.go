// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import "fmt"

// Location is a point in a source file. Line is 1-based, Column is 0-based and
// Offset is the byte offset from the start of the file.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

type TokenType uint16

const (
	TokenTypeUnknown     TokenType = 0
	TokenTypePunctuation TokenType = 1
	TokenTypeOperator    TokenType = 2
	TokenTypeKeyword     TokenType = 3
	TokenTypeLiteral     TokenType = 4
	TokenTypeIdentifier  TokenType = 5
)

func (t TokenType) String() string {
	switch t {
	case TokenTypePunctuation:
		return "punctuation"
	case TokenTypeOperator:
		return "operator"
	case TokenTypeKeyword:
		return "keyword"
	case TokenTypeLiteral:
		return "literal"
	case TokenTypeIdentifier:
		return "identifier"
	default:
		return "unknown"
	}
}

type LiteralKind uint8

const (
	LiteralKindNone LiteralKind = 0
	LiteralKindInt  LiteralKind = 1
	LiteralKindStr  LiteralKind = 2
	LiteralKindBool LiteralKind = 3
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralKindInt:
		return "int"
	case LiteralKindStr:
		return "str"
	case LiteralKindBool:
		return "bool"
	default:
		return "none"
	}
}

// Token is one lexeme recognized by the tokenizer. Literal is only set for
// TokenTypeLiteral tokens.
type Token struct {
	Location
	Type    TokenType
	Literal LiteralKind
	Value   string
}

func (t Token) String() string {
	if t.Type == TokenTypeLiteral {
		return fmt.Sprintf("%s(%s) %q", t.Type, t.Literal, t.Value)
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}
