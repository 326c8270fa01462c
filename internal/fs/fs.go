// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
)

const (
	sourceExt = ".spork" // Spork source text
)

var knownExts = map[string]idl.FileKind{
	sourceExt: idl.FileKindSpork,
}

// KindForPath selects the file kind from the extension of the given path.
// Unknown extensions are FileKindNone.
func KindForPath(path string) idl.FileKind {
	return knownExts[filepath.Ext(path)]
}

var _ idl.FileSystem = FileSystemMulti{}

// FileSystemMulti is an ordered set of FileSystem implementations that are
// tried in order. Note that this type does not implement write operations.
// Those must be performed on individual backends.
type FileSystemMulti []idl.FileSystem

// Open returns the files from the first backend that can open uri. A backend
// failure other than a missing file stops the search.
func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]idl.File, error) {
	for _, backend := range r {
		files, err := backend.Open(ctx, uri)
		if err == nil {
			return files, nil
		}
		var e exc.Exception
		if errors.As(err, &e) && e.Code() != exc.CodeFileNotFound {
			return nil, err
		}
	}
	return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("could not open %s from any file system", uri))
}

func (r FileSystemMulti) Write(ctx context.Context, uri string, content string) error {
	return exc.New(exc.Location{URI: uri}, exc.CodeUnsuportedFileSystemOperation, "cannot write to a composite file system")
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. The string
// value provided to the factory function is the root directory of the file
// system. All paths given to open are considered relative to this root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default keeps only .spork files.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
}

// NewFileSystemLocal creates a new FileSystem rooted at a local directory.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (idl.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	result := &fileSystemLocal{
		root:      absroot,
		fsFactory: os.DirFS,
		fileFilter: func(ctx context.Context, fname string) bool {
			return KindForPath(fname) != idl.FileKindNone
		},
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

// Open returns a single file when uri names a file, or every file accepted by
// the filter when uri names a directory. Subdirectories are not descended.
func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]idl.File, error) {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	path = filepath.Join("/", path)

	dir := r.fsFactory(r.root)
	// fs.FS wants un-rooted paths and "." for the root itself.
	p := strings.TrimPrefix(filepath.Clean(path), "/")
	if p == "" {
		p = "."
	}
	stat, err := fs.Stat(dir, p)
	if err != nil {
		return nil, fsErr(path, err)
	}
	if !stat.IsDir() {
		return []idl.File{r.file(dir, path, p)}, nil
	}
	entries, err := fs.ReadDir(dir, p)
	if err != nil {
		return nil, fsErr(path, err)
	}
	files := make([]idl.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !r.fileFilter(ctx, entry.Name()) {
			continue
		}
		files = append(files, r.file(dir, filepath.Join(path, entry.Name()), filepath.Join(p, entry.Name())))
	}
	if len(files) < 1 {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it has no source files", path))
	}
	return files, nil
}

func (r *fileSystemLocal) file(dir fs.FS, path string, p string) idl.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return dir.Open(p)
	}, KindForPath(p))
}

func (r *fileSystemLocal) Write(ctx context.Context, uri string, content string) error {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	p := filepath.Clean(filepath.Join(r.root, "/", path))

	d := filepath.Dir(p)
	if err = os.MkdirAll(d, os.ModeDir|0o755); err != nil {
		return fsErr(d, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fsErr(p, err)
	}
	return nil
}

func fsErr(path string, err error) error {
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		return exc.WrapUnknown(exc.Location{URI: path}, err)
	}
	loc := exc.Location{URI: path}
	switch {
	case errors.Is(pathErr.Err, fs.ErrNotExist):
		return exc.Wrap(loc, exc.CodeFileNotFound, pathErr)
	case errors.Is(pathErr.Err, fs.ErrPermission):
		return exc.Wrap(loc, exc.CodePermissionDenied, pathErr)
	default:
		return exc.WrapUnknown(loc, pathErr)
	}
}
