// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package spork

import (
	"slices"
	"strings"

	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/iter"
	"gopkg.spork.dev/compiler.go/internal/optional"
)

// recognizer attempts one lexical form at the cursor and returns the lexeme
// it consumed. Recognizers may leave the cursor anywhere on no-match; the
// matcher that owns them rewinds it.
type recognizer func(c *iter.Cursor) optional.Optional[string]

// matcher pairs a recognizer with the kind of token it produces. It is one
// row of the tokenizer's grammar table.
type matcher struct {
	tokenType idl.TokenType
	literal   idl.LiteralKind
	recognize recognizer
}

// match runs the recognizer under a cursor snapshot. On no-match the cursor is
// left exactly where it was found.
func (m matcher) match(c *iter.Cursor) optional.Optional[*idl.Token] {
	loc := c.Location()
	lexeme := iter.Attempt(c, m.recognize)
	if !lexeme.IsPresent() {
		return optional.None[*idl.Token]()
	}
	return optional.Some(&idl.Token{
		Location: loc,
		Type:     m.tokenType,
		Literal:  m.literal,
		Value:    lexeme.Value(),
	})
}

// successorPolicy decides whether a lexeme that matched literally may end
// where it ended.
type successorPolicy struct {
	// successors are the tokens allowed to follow immediately, without
	// whitespace in between.
	successors []matcher
	// requireWhitespace rejects a match followed by anything but whitespace
	// or end of input. It only applies when successors is empty.
	requireWhitespace bool
}

func (p successorPolicy) accepts(c *iter.Cursor) bool {
	next := c.Peek()
	if !next.IsPresent() || isSpace(next.Value()) {
		return true
	}
	if len(p.successors) > 0 {
		for _, s := range p.successors {
			if iter.Probe(c, s.recognize) {
				return true
			}
		}
		return false
	}
	return !p.requireWhitespace
}

// recognizeExact matches val character for character and then applies the
// successor policy.
func recognizeExact(val string, policy successorPolicy) recognizer {
	return func(c *iter.Cursor) optional.Optional[string] {
		for x := 0; x < len(val); x = x + 1 {
			next := c.Peek()
			if !next.IsPresent() || next.Value() != val[x] {
				return optional.None[string]()
			}
			_, _ = c.Advance()
		}
		if !policy.accepts(c) {
			return optional.None[string]()
		}
		return optional.Some(val)
	}
}

// recognizeNumber matches a maximal run of decimal digits that is followed by
// whitespace, end of input, or one of the policy's successors.
func recognizeNumber(policy successorPolicy) recognizer {
	return func(c *iter.Cursor) optional.Optional[string] {
		var builder strings.Builder
		for next := c.Peek(); next.IsPresent() && isDigit(next.Value()); next = c.Peek() {
			ch, _ := c.Advance()
			_ = builder.WriteByte(ch)
		}
		if builder.Len() == 0 {
			return optional.None[string]()
		}
		if !policy.accepts(c) {
			return optional.None[string]()
		}
		return optional.Some(builder.String())
	}
}

func recognizeBoolean(policy successorPolicy) recognizer {
	matchTrue := recognizeExact("true", policy)
	matchFalse := recognizeExact("false", policy)
	return func(c *iter.Cursor) optional.Optional[string] {
		next := c.Peek()
		if !next.IsPresent() {
			return optional.None[string]()
		}
		switch next.Value() {
		case 't':
			return matchTrue(c)
		case 'f':
			return matchFalse(c)
		default:
			return optional.None[string]()
		}
	}
}

// recognizeString matches a double quoted string, quotes included. A
// backslash escapes the character after it, so \" does not terminate the
// string but \\" does.
func recognizeString(c *iter.Cursor) optional.Optional[string] {
	next := c.Peek()
	if !next.IsPresent() || next.Value() != '"' {
		return optional.None[string]()
	}
	var builder strings.Builder
	quote, _ := c.Advance()
	_ = builder.WriteByte(quote)
	escape := false
	for !c.AtEnd() {
		ch, _ := c.Advance()
		_ = builder.WriteByte(ch)
		switch {
		case ch == '\\':
			escape = !escape
		case ch == '"' && !escape:
			return optional.Some(builder.String())
		default:
			escape = false
		}
	}
	return optional.None[string]()
}

// recognizeIdentifier matches a maximal run of letters, digits and
// underscores that does not start with a digit. The text is then rescanned on
// its own against every reserved matcher; if one of them consumes it whole it
// is a keyword or literal, not an identifier.
func recognizeIdentifier(reserved []matcher) recognizer {
	return func(c *iter.Cursor) optional.Optional[string] {
		next := c.Peek()
		if !next.IsPresent() || isDigit(next.Value()) {
			return optional.None[string]()
		}
		var builder strings.Builder
		for next := c.Peek(); next.IsPresent() && isIdentifierChar(next.Value()); next = c.Peek() {
			ch, _ := c.Advance()
			_ = builder.WriteByte(ch)
		}
		if builder.Len() == 0 {
			return optional.None[string]()
		}
		ident := builder.String()
		for _, r := range reserved {
			isolated := iter.NewCursor("", ident)
			if r.recognize(isolated).IsPresent() && isolated.AtEnd() {
				return optional.None[string]()
			}
		}
		return optional.Some(ident)
	}
}

// exactSet builds matchers for a fixed set of lexemes, longest first, so that
// a lexeme is never shadowed by one of its own prefixes (-> before -, ** before
// *).
func exactSet(tokenType idl.TokenType, policy successorPolicy, lexemes ...string) []matcher {
	sorted := slices.Clone(lexemes)
	slices.SortStableFunc(sorted, func(a string, b string) int {
		return len(b) - len(a)
	})
	out := make([]matcher, 0, len(sorted))
	for _, lexeme := range sorted {
		out = append(out, matcher{
			tokenType: tokenType,
			recognize: recognizeExact(lexeme, policy),
		})
	}
	return out
}

func keyword(word string, policy successorPolicy) matcher {
	return matcher{
		tokenType: idl.TokenTypeKeyword,
		recognize: recognizeExact(word, policy),
	}
}

func punctuationMatcher(lexeme string) matcher {
	return exactSet(idl.TokenTypePunctuation, successorPolicy{}, lexeme)[0]
}

const (
	keywordLet       = "let"
	keywordIf        = "if"
	keywordElse      = "else"
	keywordFn        = "fn"
	keywordStruct    = "struct"
	keywordInterface = "interface"
	keywordSelf      = "Self"
)

const commentStart = '#'

var (
	matchParenOpen  = punctuationMatcher("(")
	matchParenClose = punctuationMatcher(")")
	matchCurlyOpen  = punctuationMatcher("{")
	matchComma      = punctuationMatcher(",")

	punctuation = exactSet(idl.TokenTypePunctuation, successorPolicy{},
		"(", ")", "{", "}", "[", "]", ",", ";", ":", ".",
	)

	operators = exactSet(idl.TokenTypeOperator, successorPolicy{},
		"=", "==", "->", "+", "-", "**", "*", "/", "!", "&&", "||",
	)

	keywords = []matcher{
		keyword(keywordLet, successorPolicy{requireWhitespace: true}),
		keyword(keywordStruct, successorPolicy{successors: []matcher{matchCurlyOpen}, requireWhitespace: true}),
		keyword(keywordInterface, successorPolicy{successors: []matcher{matchCurlyOpen}, requireWhitespace: true}),
		keyword(keywordSelf, successorPolicy{successors: []matcher{matchParenClose, matchComma}, requireWhitespace: true}),
		keyword(keywordIf, successorPolicy{successors: []matcher{matchParenOpen}, requireWhitespace: true}),
		keyword(keywordElse, successorPolicy{successors: []matcher{matchCurlyOpen}, requireWhitespace: true}),
		keyword(keywordFn, successorPolicy{successors: []matcher{matchParenOpen}, requireWhitespace: true}),
	}

	// numbers and booleans may be followed directly by any punctuation or
	// operator, never by a letter.
	literalSuccessors = successorPolicy{successors: slices.Concat(punctuation, operators)}

	literals = []matcher{
		{tokenType: idl.TokenTypeLiteral, literal: idl.LiteralKindInt, recognize: recognizeNumber(literalSuccessors)},
		{tokenType: idl.TokenTypeLiteral, literal: idl.LiteralKindBool, recognize: recognizeBoolean(literalSuccessors)},
		{tokenType: idl.TokenTypeLiteral, literal: idl.LiteralKindStr, recognize: recognizeString},
	}

	identifier = matcher{
		tokenType: idl.TokenTypeIdentifier,
		recognize: recognizeIdentifier(slices.Concat(keywords, literals)),
	}

	// grammar is the tokenizer's priority order; the first matcher that
	// accepts wins.
	grammar = slices.Concat(punctuation, operators, keywords, literals, []matcher{identifier})
)

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentifierChar(ch byte) bool {
	return ch == '_' || isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
