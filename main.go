// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"gopkg.spork.dev/compiler.go/internal/compiler"
	"gopkg.spork.dev/compiler.go/internal/config"
	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/fs"
	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/logs"
)

const (
	errorFormatCaret  = "caret"
	errorFormatProtoc = "protoc"
)

type opts struct {
	Roots          []string
	DumpTokens     bool
	DumpTree       bool
	TreeFormat     string
	Config         string
	LogLevel       string
	LogFile        string
	MaxConcurrency int
	ErrorFormat    string
}

func main() {
	os.Exit(run(os.Args[1:], os.LookupEnv, os.Stdout, os.Stderr))
}

func run(args []string, lookupEnv func(string) (string, bool), stdout io.Writer, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("sporkc", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for targets.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream of each file")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the parse tree after parsing")
	flags.StringVar(&op.TreeFormat, "tree-format", "text", "Parse tree output format: text or json")
	flags.StringVar(&op.Config, "config", "", "Read settings from a TOML or YAML file. Defaults to $"+config.EnvConfigPath)
	flags.StringVar(&op.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.StringVar(&op.LogFile, "log-file", "", "Also write JSON logs to this file")
	flags.IntVar(&op.MaxConcurrency, "max-concurrency", 0, "Maximum files compiled at once. 0 uses every CPU")
	flags.StringVar(&op.ErrorFormat, "error-format", errorFormatCaret, "Diagnostic format: caret or protoc")
	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(stderr, err.Error())
		flags.Usage()
		return 2
	}
	if op.ErrorFormat != errorFormatCaret && op.ErrorFormat != errorFormatProtoc {
		fmt.Fprintf(stderr, "unknown error format %q, expected %s or %s\n", op.ErrorFormat, errorFormatCaret, errorFormatProtoc)
		return 2
	}
	targets := flags.Args()

	if op.Config == "" {
		op.Config, _ = lookupEnv(config.EnvConfigPath)
	}
	if op.Config != "" {
		cfg, err := config.Load(op.Config)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 1
		}
		applyConfig(flags, op, cfg)
	}

	levelValue, err := logs.ParseLevel(op.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}
	level := new(slog.LevelVar)
	level.Set(levelValue)
	var logFile io.Writer
	if op.LogFile != "" {
		f, err := os.OpenFile(op.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 1
		}
		defer f.Close()
		logFile = f
	}
	logger := logs.New(stderr, logFile, level)

	f, err := compiler.NewDefaultFS(lookupEnv)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	mf, err := compiler.NewRootsFS(op.Roots)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	mf = append(mf, f)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(lookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithLogger(logger),
		compiler.OptionWithMaxConcurrency(op.MaxConcurrency),
		compiler.OptionWithOutput(stdout),
	)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	out, err := c.Compile(ctx, &idl.CompileRequest{
		Files:      targets,
		DumpTokens: op.DumpTokens,
		DumpTree:   op.DumpTree,
		TreeFormat: op.TreeFormat,
	})
	if err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, e := range me {
				fmt.Fprintln(stderr, formatException(ctx, mf, op.ErrorFormat, e))
			}
			return 1
		}
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	logger.Info("compiled", "modules", len(out.Image.Modules))
	return 0
}

// applyConfig copies config file values into op for every flag that was not
// given on the command line.
func applyConfig(flags *pflag.FlagSet, op *opts, cfg *config.Config) {
	if !flags.Changed("root") && len(cfg.Roots) > 0 {
		op.Roots = cfg.Roots
	}
	if !flags.Changed("dump-tokens") && cfg.DumpTokens {
		op.DumpTokens = true
	}
	if !flags.Changed("dump-tree") && cfg.DumpTree {
		op.DumpTree = true
	}
	if !flags.Changed("tree-format") && cfg.TreeFormat != "" {
		op.TreeFormat = cfg.TreeFormat
	}
	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		op.LogLevel = cfg.LogLevel
	}
	if !flags.Changed("log-file") && cfg.LogFile != "" {
		op.LogFile = cfg.LogFile
	}
	if !flags.Changed("max-concurrency") && cfg.MaxConcurrency > 0 {
		op.MaxConcurrency = cfg.MaxConcurrency
	}
}

// formatException renders e with the offending source line when the source can
// be read back, and as a single line otherwise.
func formatException(ctx context.Context, fsys idl.FileSystem, format string, e exc.Exception) string {
	if format == errorFormatProtoc {
		return exc.ToErrorWithPos(e).Error()
	}
	if e.Location().Line < 1 {
		return e.Error()
	}
	files, err := fsys.Open(ctx, e.Location().URI)
	if err != nil || len(files) != 1 {
		return e.Error()
	}
	source, err := fs.ReadAll(ctx, files[0])
	if err != nil {
		return e.Error()
	}
	return e.Location().URI + "\n" + exc.Render(source, e)
}
