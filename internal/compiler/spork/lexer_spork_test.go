// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package spork

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/fs"
	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/iter"
)

func newToken(line int32, column int32, offset int64, tokenType idl.TokenType, value string) *idl.Token {
	return &idl.Token{
		Location: idl.Location{Line: line, Column: column, Offset: offset},
		Type:     tokenType,
		Value:    value,
	}
}

func newLiteralToken(line int32, column int32, offset int64, kind idl.LiteralKind, value string) *idl.Token {
	t := newToken(line, column, offset, idl.TokenTypeLiteral, value)
	t.Literal = kind
	return t
}

func TestLexer(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []*idl.Token
	}{
		{
			name:     "empty file",
			input:    "",
			expected: []*idl.Token{},
		},
		{
			name:     "only whitespace",
			input:    "  \n\t \r\n ",
			expected: []*idl.Token{},
		},
		{
			name:  "let",
			input: "let x = 5;",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeKeyword, "let"),
				newToken(1, 4, 4, idl.TokenTypeIdentifier, "x"),
				newToken(1, 6, 6, idl.TokenTypeOperator, "="),
				newLiteralToken(1, 8, 8, idl.LiteralKindInt, "5"),
				newToken(1, 9, 9, idl.TokenTypePunctuation, ";"),
			},
		},
		{
			name:  "keyword prefix is an identifier",
			input: "fname",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeIdentifier, "fname"),
			},
		},
		{
			name:  "fn followed by paren",
			input: "fn() -> int { 1 }",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeKeyword, "fn"),
				newToken(1, 2, 2, idl.TokenTypePunctuation, "("),
				newToken(1, 3, 3, idl.TokenTypePunctuation, ")"),
				newToken(1, 5, 5, idl.TokenTypeOperator, "->"),
				newToken(1, 8, 8, idl.TokenTypeIdentifier, "int"),
				newToken(1, 12, 12, idl.TokenTypePunctuation, "{"),
				newLiteralToken(1, 14, 14, idl.LiteralKindInt, "1"),
				newToken(1, 16, 16, idl.TokenTypePunctuation, "}"),
			},
		},
		{
			name:  "operators longest first",
			input: "-> - ** * == = && || ! + /",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeOperator, "->"),
				newToken(1, 3, 3, idl.TokenTypeOperator, "-"),
				newToken(1, 5, 5, idl.TokenTypeOperator, "**"),
				newToken(1, 8, 8, idl.TokenTypeOperator, "*"),
				newToken(1, 10, 10, idl.TokenTypeOperator, "=="),
				newToken(1, 13, 13, idl.TokenTypeOperator, "="),
				newToken(1, 15, 15, idl.TokenTypeOperator, "&&"),
				newToken(1, 18, 18, idl.TokenTypeOperator, "||"),
				newToken(1, 21, 21, idl.TokenTypeOperator, "!"),
				newToken(1, 23, 23, idl.TokenTypeOperator, "+"),
				newToken(1, 25, 25, idl.TokenTypeOperator, "/"),
			},
		},
		{
			name:  "minus before number",
			input: "-5",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeOperator, "-"),
				newLiteralToken(1, 1, 1, idl.LiteralKindInt, "5"),
			},
		},
		{
			name:  "comments",
			input: "# leading comment\nx # trailing\n# last line without newline",
			expected: []*idl.Token{
				newToken(2, 0, 18, idl.TokenTypeIdentifier, "x"),
			},
		},
		{
			name:  "literals",
			input: "\"a b\" true false 42",
			expected: []*idl.Token{
				newLiteralToken(1, 0, 0, idl.LiteralKindStr, "\"a b\""),
				newLiteralToken(1, 6, 6, idl.LiteralKindBool, "true"),
				newLiteralToken(1, 11, 11, idl.LiteralKindBool, "false"),
				newLiteralToken(1, 17, 17, idl.LiteralKindInt, "42"),
			},
		},
		{
			name:  "struct and Self",
			input: "struct{ me: Self, }",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeKeyword, "struct"),
				newToken(1, 6, 6, idl.TokenTypePunctuation, "{"),
				newToken(1, 8, 8, idl.TokenTypeIdentifier, "me"),
				newToken(1, 10, 10, idl.TokenTypePunctuation, ":"),
				newToken(1, 12, 12, idl.TokenTypeKeyword, "Self"),
				newToken(1, 16, 16, idl.TokenTypePunctuation, ","),
				newToken(1, 18, 18, idl.TokenTypePunctuation, "}"),
			},
		},
		{
			name:  "multi line positions",
			input: "if x {\n  1\n}",
			expected: []*idl.Token{
				newToken(1, 0, 0, idl.TokenTypeKeyword, "if"),
				newToken(1, 3, 3, idl.TokenTypeIdentifier, "x"),
				newToken(1, 5, 5, idl.TokenTypePunctuation, "{"),
				newLiteralToken(2, 2, 9, idl.LiteralKindInt, "1"),
				newToken(3, 0, 11, idl.TokenTypePunctuation, "}"),
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			tokens, err := Tokenize("/test.spork", testCase.input)
			require.Nil(t, err)
			require.Equal(t, testCase.expected, tokens)
		})
	}
}

func TestLexerErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		line   int32
		column int32
		before int
	}{
		{name: "digits then letters", input: "123abc", line: 1, column: 0},
		{name: "unknown character", input: "let x = @", line: 1, column: 8, before: 3},
		{name: "unterminated string", input: "x \"abc", line: 1, column: 2, before: 1},
		{name: "keyword with invalid successor", input: "\n  Self{", line: 2, column: 2},
		{name: "lone ampersand", input: "a & b", line: 1, column: 2, before: 1},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			tokens, err := Tokenize("/test.spork", testCase.input)
			require.NotNil(t, err)
			require.True(t, exc.IsLexError(err))
			require.False(t, exc.IsParseError(err))
			require.Len(t, tokens, testCase.before)
			var e exc.Exception
			require.ErrorAs(t, err, &e)
			require.Equal(t, "unrecognized token", e.Message())
			require.Equal(t, testCase.line, e.Location().Line)
			require.Equal(t, testCase.column, e.Location().Column)
			require.Equal(t, "/test.spork", e.Location().URI)
		})
	}
}

func TestLexerErrorIsSticky(t *testing.T) {
	t.Parallel()

	reporter := exc.NewReporter(nil)
	tokens := NewTokenizer(iter.NewCursor("", "x $ y"), reporter)
	first, err := tokens.Next()
	require.Nil(t, err)
	require.Equal(t, "x", first.Value)

	_, err = tokens.Peek()
	require.NotNil(t, err)
	_, again := tokens.Next()
	require.Equal(t, err, again)
	_, atEndErr := tokens.AtEnd()
	require.Equal(t, err, atEndErr)
	require.Len(t, reporter.Reported(), 1)
}

func TestLexerLookahead(t *testing.T) {
	t.Parallel()

	tokens := NewTokenizer(iter.NewCursor("", "a  b"), nil)
	peeked, err := tokens.Peek()
	require.Nil(t, err)
	require.Equal(t, "a", peeked.Value)
	require.Equal(t, idl.Location{Line: 1, Column: 0, Offset: 0}, tokens.Location())
	peekedAgain, err := tokens.Peek()
	require.Nil(t, err)
	require.Same(t, peeked, peekedAgain)

	next, err := tokens.Next()
	require.Nil(t, err)
	require.Same(t, peeked, next)

	end, err := tokens.AtEnd()
	require.Nil(t, err)
	require.False(t, end)
	require.Equal(t, idl.Location{Line: 1, Column: 3, Offset: 3}, tokens.Location())

	next, err = tokens.Next()
	require.Nil(t, err)
	require.Equal(t, "b", next.Value)

	end, err = tokens.AtEnd()
	require.Nil(t, err)
	require.True(t, end)
	next, err = tokens.Next()
	require.Nil(t, err)
	require.Nil(t, next)
	require.Equal(t, idl.Location{Line: 1, Column: 4, Offset: 4}, tokens.Location())
}

func TestLexerRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"let x = 5;",
		"fn (x: int, y: (int, bool)) -> int { x }",
		"if true { \"a \\\" b\" } else { fname }",
		"struct { a: int, b: Self, } interface { m: (Self, int) }",
		"1 + 2 ** 3 - -4 && !false || x / y * z == w [ ] . ;",
	}
	for _, input := range inputs {
		first, err := Tokenize("", input)
		require.Nil(t, err)
		lexemes := make([]string, 0, len(first))
		for _, token := range first {
			lexemes = append(lexemes, token.Value)
		}
		second, err := Tokenize("", strings.Join(lexemes, " "))
		require.Nil(t, err)
		require.Len(t, second, len(first))
		for index := range first {
			require.Equal(t, first[index].Type, second[index].Type, input)
			require.Equal(t, first[index].Literal, second[index].Literal, input)
			require.Equal(t, first[index].Value, second[index].Value, input)
		}
	}
}

func TestLexFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := fs.NewFileString("/main.spork", "let answer = 42;", idl.FileKindSpork)
	lf, err := NewLexerSpork(nil).Lex(ctx, f)
	require.Nil(t, err)
	source, err := lf.Source(ctx)
	require.Nil(t, err)
	require.Equal(t, "let answer = 42;", source)

	stream, err := lf.Tokens(ctx)
	require.Nil(t, err)
	count := 0
	for {
		token, err := stream.Next()
		require.Nil(t, err)
		if token == nil {
			break
		}
		count = count + 1
	}
	require.Equal(t, 5, count)
}
