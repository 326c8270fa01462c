// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"
)

type Closer interface {
	Close(ctx context.Context) error
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindSpork
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindSpork:
		return "spork"
	default:
		return fmt.Sprintf("unkown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	Files      []string
	DumpTokens bool
	DumpTree   bool
	// TreeFormat selects the tree dump encoding: "text" (default) or "json".
	TreeFormat string
}

type CompileResponse struct {
	Image *Image
}

// Image is the set of modules produced by one compile run, in target order.
type Image struct {
	Modules []*Module
}

// Module is the parse result for a single source file.
type Module struct {
	URI     string
	Program *Program
}

// LexerFile is a File whose content can be consumed as tokens.
type LexerFile interface {
	File
	Source(ctx context.Context) (string, error)
	Tokens(ctx context.Context) (TokenStream, error)
}

// TokenStream is a single-token-lookahead view over a tokenized source. A nil
// token with a nil error is the end-marker. Location is the position of the
// lookahead token, or of the end of input once the stream is exhausted.
type TokenStream interface {
	Next() (*Token, error)
	Peek() (*Token, error)
	AtEnd() (bool, error)
	Location() Location
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

type Parser interface {
	Parse(ctx context.Context, f LexerFile) (*Module, error)
}
