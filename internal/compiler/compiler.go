// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
	"gopkg.spork.dev/compiler.go/internal/logs"
)

type Option func(c *compiler) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithLogger(logger *slog.Logger) Option {
	return func(c *compiler) error {
		c.Logger = logger
		return nil
	}
}

// OptionWithMaxConcurrency bounds the number of files processed at once. Zero
// selects the number of usable CPUs.
func OptionWithMaxConcurrency(max int) Option {
	return func(c *compiler) error {
		if max < 0 {
			return exc.New(exc.Location{}, exc.CodeConfigError, fmt.Sprintf("max concurrency must not be negative, got %d", max))
		}
		c.MaxConcurrency = max
		return nil
	}
}

// OptionWithOutput sets where token and tree dumps are written. The default is
// os.Stdout.
func OptionWithOutput(w io.Writer) Option {
	return func(c *compiler) error {
		c.Output = w
		return nil
	}
}

func New(opts ...Option) (idl.Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.Logger == nil {
		c.Logger = logs.Discard()
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers()
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             idl.FileSystem
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
	Logger         *slog.Logger
	Output         io.Writer
	SubCompilers   map[idl.FileKind]SubCompiler
}

// Compile tokenizes and parses every file named by the request. Files are
// processed concurrently but the image and any dumps follow target order. A
// failing file does not stop the others; every failure is returned together
// as a MultiException alongside the modules that did compile.
func (self *compiler) Compile(ctx context.Context, req *idl.CompileRequest) (*idl.CompileResponse, error) {
	format, err := parseTreeFormat(req.TreeFormat)
	if err != nil {
		return nil, err
	}
	logger := self.Logger.With("run", uuid.NewString())
	started := time.Now()
	r := &runReporter{Reporter: self.Reporter}

	files := make([]idl.File, 0, len(req.Files))
	loaded := make(map[string]bool)
	for _, f := range req.Files {
		uri := targetURI(f)
		in, err := self.FS.Open(ctx, uri)
		if err != nil {
			logger.Error("cannot open target", "target", uri, "error", err)
			_ = report(r, uri, err)
			continue
		}
		for _, file := range in {
			if loaded[file.Path(ctx)] {
				continue
			}
			loaded[file.Path(ctx)] = true
			files = append(files, file)
		}
	}

	opts := FileOptions{
		DumpTokens: req.DumpTokens,
		DumpTree:   req.DumpTree,
		TreeFormat: format,
		Logger:     logger,
	}
	results := make([]fileResult, len(files))
	wg := &sync.WaitGroup{}
	for offset, file := range files {
		wg.Add(1)
		go func(offset int, file idl.File) {
			defer wg.Done()
			results[offset] = self.compileFile(ctx, r, file, opts)
		}(offset, file)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := &idl.Image{}
	for _, result := range results {
		if result.dump.Len() > 0 {
			if _, err := result.dump.WriteTo(self.Output); err != nil {
				return nil, exc.WrapUnknown(exc.Location{}, err)
			}
		}
		if result.module != nil {
			final.Modules = append(final.Modules, result.module)
		}
	}
	logger.Debug("compile finished", "files", len(files), "modules", len(final.Modules), "elapsed", time.Since(started))

	caught := r.Reported()
	if len(caught) > 0 {
		return &idl.CompileResponse{
			Image: final,
		}, sortedExceptions(caught)
	}
	return &idl.CompileResponse{
		Image: final,
	}, nil
}

func (self *compiler) compileFile(ctx context.Context, r exc.Reporter, file idl.File, opts FileOptions) fileResult {
	result := fileResult{dump: &bytes.Buffer{}}
	if err := self.Semaphore.Acquire(ctx); err != nil {
		return result
	}
	defer self.Semaphore.Release()

	sc := self.SubCompilers[file.Kind(ctx)]
	if sc == nil {
		e := exc.New(exc.Location{URI: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, fmt.Sprintf("unsupported file format %s", file.Kind(ctx)))
		_ = r.Report(e)
		return result
	}
	opts.Output = result.dump
	module, err := sc.CompileFile(ctx, r, file, opts)
	if err != nil {
		opts.Logger.Error("compile failed", "file", file.Path(ctx), "error", err)
		return result
	}
	result.module = module
	return result
}

// report records a failure that happened outside of a sub-compiler.
func report(r exc.Reporter, uri string, err error) exc.Exception {
	var e exc.Exception
	if !errors.As(err, &e) {
		e = exc.WrapUnknown(exc.Location{URI: uri}, err)
	}
	return r.Report(e)
}

// runReporter scopes a long-lived Reporter to one Compile call. Every report
// reaches the wrapped Reporter, which decides whether it is fatal, but
// Reported only returns what this run saw.
type runReporter struct {
	exc.Reporter
	lock   sync.Mutex
	caught []exc.Exception
}

func (r *runReporter) Report(e exc.Exception) exc.Exception {
	r.lock.Lock()
	r.caught = append(r.caught, e)
	r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *runReporter) Reported() []exc.Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]exc.Exception, len(r.caught))
	copy(out, r.caught)
	return out
}

// targetURI puts a compile target in the form the FileSystem expects. Plain
// paths and file URIs become absolute paths rooted at "/". Any other URI is
// left as-is for a FileSystem that understands its scheme.
func targetURI(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	return filepath.Join("/", target)
}

type fileResult struct {
	module *idl.Module
	dump   *bytes.Buffer
}

// MultiException is every failure of one compile run, ordered by file and
// position.
type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}

func sortedExceptions(caught []exc.Exception) MultiException {
	out := MultiException(caught)
	slices.SortStableFunc(out, func(a exc.Exception, b exc.Exception) int {
		la := a.Location()
		lb := b.Location()
		return cmp.Or(
			cmp.Compare(la.URI, lb.URI),
			cmp.Compare(la.Line, lb.Line),
			cmp.Compare(la.Column, lb.Column),
		)
	})
	return out
}
