// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package spork

import (
	"context"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/fs"
	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/iter"
)

// LexerSpork implements a tokenizer for Spork source files.
type LexerSpork struct {
	reporter exc.Reporter
}

var _ idl.Lexer = (*LexerSpork)(nil)

func NewLexerSpork(reporter exc.Reporter) *LexerSpork {
	if reporter == nil {
		reporter = exc.NewReporter(nil)
	}
	return &LexerSpork{reporter: reporter}
}

func (self *LexerSpork) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileSpork{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileSpork struct {
	idl.File
	reporter exc.Reporter
	source   *string
}

func (self *lexerFileSpork) Source(ctx context.Context) (string, error) {
	if self.source != nil {
		return *self.source, nil
	}
	source, err := fs.ReadAll(ctx, self.File)
	if err != nil {
		return "", err
	}
	self.source = &source
	return source, nil
}

func (self *lexerFileSpork) Tokens(ctx context.Context) (idl.TokenStream, error) {
	source, err := self.Source(ctx)
	if err != nil {
		return nil, err
	}
	return NewTokenizer(iter.NewCursor(self.File.Path(ctx), source), self.reporter), nil
}

// Tokenizer turns a cursor into a stream of tokens with one token of
// lookahead. The lookahead is computed lazily. The first lexical error is
// reported once and then returned by every later call.
type Tokenizer struct {
	cursor   *iter.Cursor
	reporter exc.Reporter
	peeked   bool
	token    *idl.Token
	err      exc.Exception
}

var _ idl.TokenStream = (*Tokenizer)(nil)

func NewTokenizer(cursor *iter.Cursor, reporter exc.Reporter) *Tokenizer {
	if reporter == nil {
		reporter = exc.NewReporter(nil)
	}
	return &Tokenizer{
		cursor:   cursor,
		reporter: reporter,
	}
}

// Peek returns the lookahead token without consuming it, or nil at the end of
// input.
func (t *Tokenizer) Peek() (*idl.Token, error) {
	if t.err != nil {
		return nil, t.err
	}
	if !t.peeked {
		token, err := t.scan()
		if err != nil {
			t.err = err
			return nil, err
		}
		t.token = token
		t.peeked = true
	}
	return t.token, nil
}

// Next consumes and returns the lookahead token, or nil at the end of input.
func (t *Tokenizer) Next() (*idl.Token, error) {
	token, err := t.Peek()
	if err != nil {
		return nil, err
	}
	t.peeked = false
	t.token = nil
	return token, nil
}

func (t *Tokenizer) AtEnd() (bool, error) {
	token, err := t.Peek()
	if err != nil {
		return false, err
	}
	return token == nil, nil
}

func (t *Tokenizer) Location() idl.Location {
	if t.peeked && t.token != nil {
		return t.token.Location
	}
	return t.cursor.Location()
}

func (t *Tokenizer) scan() (*idl.Token, exc.Exception) {
	for {
		t.skipWhitespace()
		next := t.cursor.Peek()
		if !next.IsPresent() {
			return nil, nil
		}
		if next.Value() != commentStart {
			break
		}
		t.skipComment()
	}
	for _, m := range grammar {
		token := m.match(t.cursor)
		if token.IsPresent() {
			t.skipWhitespace()
			return token.Value(), nil
		}
	}
	e := t.cursor.ReportError(exc.CodeLexError, "unrecognized token")
	_ = t.reporter.Report(e)
	return nil, e
}

func (t *Tokenizer) skipWhitespace() {
	for next := t.cursor.Peek(); next.IsPresent() && isSpace(next.Value()); next = t.cursor.Peek() {
		_, _ = t.cursor.Advance()
	}
}

// skipComment discards everything through the end of the line. A comment on
// the last line ends at the end of input.
func (t *Tokenizer) skipComment() {
	for !t.cursor.AtEnd() {
		ch, _ := t.cursor.Advance()
		if ch == '\n' {
			return
		}
	}
}

// Tokenize reads every token from source. It stops at the first lexical
// error.
func Tokenize(uri string, source string) ([]*idl.Token, error) {
	t := NewTokenizer(iter.NewCursor(uri, source), nil)
	tokens := []*idl.Token{}
	for {
		token, err := t.Next()
		if err != nil {
			return tokens, err
		}
		if token == nil {
			return tokens, nil
		}
		tokens = append(tokens, token)
	}
}
