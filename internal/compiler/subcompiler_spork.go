package compiler

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.spork.dev/compiler.go/internal/compiler/spork"
	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
)

type SubCompilerSpork struct{}

func (self *SubCompilerSpork) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, opts FileOptions) (*idl.Module, error) {
	started := time.Now()
	lexer := spork.NewLexerSpork(r)
	parser := spork.NewParserSpork(r)
	lf, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, reportOnce(r, file.Path(ctx), err)
	}
	source, err := lf.Source(ctx)
	if err != nil {
		return nil, reportOnce(r, file.Path(ctx), err)
	}
	if opts.DumpTokens {
		// A lexical error stops the dump here and is reported by the parse
		// below.
		tokens, _ := spork.Tokenize(file.Path(ctx), source)
		if err := writeTokens(opts.Output, tokens); err != nil {
			return nil, reportOnce(r, file.Path(ctx), err)
		}
	}
	mod, err := parser.Parse(ctx, lf)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("parsed file",
		"file", mod.URI,
		"expressions", len(mod.Program.Exprs),
		"nodes", countNodes(mod.Program),
		"elapsed", time.Since(started),
	)
	if opts.DumpTree {
		var err error
		switch opts.TreeFormat {
		case TreeFormatJSON:
			err = WriteTreeJSON(opts.Output, mod)
		default:
			err = WriteTreeText(opts.Output, mod)
		}
		if err != nil {
			return nil, reportOnce(r, file.Path(ctx), err)
		}
	}
	return mod, nil
}

func writeTokens(w io.Writer, tokens []*idl.Token) error {
	for _, token := range tokens {
		kind := token.Type.String()
		if token.Type == idl.TokenTypeLiteral {
			kind = fmt.Sprintf("%s(%s)", token.Type, token.Literal)
		}
		if _, err := fmt.Fprintf(w, "%-10s%-24s'%s'\n", token.Location, kind, token.Value); err != nil {
			return err
		}
	}
	return nil
}

func reportOnce(r exc.Reporter, uri string, err error) error {
	e, ok := err.(exc.Exception)
	if !ok {
		e = exc.WrapUnknown(exc.Location{URI: uri}, err)
	}
	_ = r.Report(e)
	return e
}
