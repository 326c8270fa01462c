package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
)

type SubCompiler interface {
	// CompileFile returns the module for file. Every failure it returns has
	// already been given to r.
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File, opts FileOptions) (*idl.Module, error)
}

// FileOptions carries the per-request settings into a SubCompiler.
type FileOptions struct {
	DumpTokens bool
	DumpTree   bool
	TreeFormat TreeFormat
	// Output receives the dumps of a single file.
	Output io.Writer
	Logger *slog.Logger
}

type TreeFormat string

const (
	TreeFormatText TreeFormat = "text"
	TreeFormatJSON TreeFormat = "json"
)

func parseTreeFormat(v string) (TreeFormat, error) {
	switch TreeFormat(v) {
	case "", TreeFormatText:
		return TreeFormatText, nil
	case TreeFormatJSON:
		return TreeFormatJSON, nil
	default:
		return "", exc.New(exc.Location{}, exc.CodeConfigError, fmt.Sprintf("unknown tree format %q", v))
	}
}

func DefaultSubCompilers() map[idl.FileKind]SubCompiler {
	return map[idl.FileKind]SubCompiler{
		idl.FileKindSpork: &SubCompilerSpork{},
	}
}
