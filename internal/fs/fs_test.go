// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
)

func newTestFS(t *testing.T, files fstest.MapFS) idl.FileSystem {
	t.Helper()
	local, err := NewFileSystemLocal("/", WithOptionFSFactory(func(string) fs.FS {
		return files
	}))
	require.Nil(t, err)
	return local
}

func TestFileSystemLocalOpen(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"src/main.spork":       {Data: []byte("let x = 5;")},
		"src/util.spork":       {Data: []byte("x")},
		"src/README.md":        {Data: []byte("# readme")},
		"src/nested/a.spork":   {Data: []byte("1")},
		"docs/notes.txt":       {Data: []byte("notes")},
		"single/only.spork":    {Data: []byte("true")},
		"other/ignored.sporkx": {Data: []byte("")},
	}
	testCases := []struct {
		name     string
		uri      string
		expected []string
		code     string
	}{
		{name: "single file", uri: "/src/main.spork", expected: []string{"/src/main.spork"}},
		{name: "relative file", uri: "src/util.spork", expected: []string{"/src/util.spork"}},
		{name: "file uri", uri: "file:///single/only.spork", expected: []string{"/single/only.spork"}},
		{name: "directory", uri: "/src", expected: []string{"/src/main.spork", "/src/util.spork"}},
		{name: "directory without sources", uri: "/docs", code: exc.CodeFileNotFound},
		{name: "missing", uri: "/nope.spork", code: exc.CodeFileNotFound},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			opened, err := newTestFS(t, files).Open(ctx, testCase.uri)
			if testCase.code != "" {
				var e exc.Exception
				require.ErrorAs(t, err, &e)
				require.Equal(t, testCase.code, e.Code())
				return
			}
			require.Nil(t, err)
			paths := make([]string, 0, len(opened))
			for _, f := range opened {
				paths = append(paths, f.Path(ctx))
				require.Equal(t, idl.FileKindSpork, f.Kind(ctx))
			}
			require.Equal(t, testCase.expected, paths)
		})
	}
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := newTestFS(t, fstest.MapFS{"a.spork": {Data: []byte("first")}})
	second := newTestFS(t, fstest.MapFS{
		"a.spork": {Data: []byte("second")},
		"b.spork": {Data: []byte("b")},
	})
	multi := FileSystemMulti{first, second}

	opened, err := multi.Open(ctx, "/a.spork")
	require.Nil(t, err)
	require.Len(t, opened, 1)
	content, err := ReadAll(ctx, opened[0])
	require.Nil(t, err)
	require.Equal(t, "first", content)

	opened, err = multi.Open(ctx, "/b.spork")
	require.Nil(t, err)
	content, err = ReadAll(ctx, opened[0])
	require.Nil(t, err)
	require.Equal(t, "b", content)

	_, err = multi.Open(ctx, "/c.spork")
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())

	err = multi.Write(ctx, "/c.spork", "")
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeUnsuportedFileSystemOperation, e.Code())
}

func TestFileSystemLocalWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	local, err := NewFileSystemLocal(root)
	require.Nil(t, err)
	require.Nil(t, local.Write(ctx, "/out/generated.spork", "let y = 1;"))

	written, err := os.ReadFile(filepath.Join(root, "out", "generated.spork"))
	require.Nil(t, err)
	require.Equal(t, "let y = 1;", string(written))

	opened, err := local.Open(ctx, "/out")
	require.Nil(t, err)
	require.Len(t, opened, 1)
	content, err := ReadAll(ctx, opened[0])
	require.Nil(t, err)
	require.Equal(t, "let y = 1;", content)
}

func TestReadAllLarge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	large := make([]byte, 10000)
	for x := range large {
		large[x] = 'a' + byte(x%26)
	}
	content, err := ReadAll(ctx, NewFileString("/big.spork", string(large), idl.FileKindSpork))
	require.Nil(t, err)
	require.Equal(t, string(large), content)
}

func TestKindForPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, idl.FileKindSpork, KindForPath("/a/b.spork"))
	require.Equal(t, idl.FileKindNone, KindForPath("/a/b.go"))
	require.Equal(t, idl.FileKindNone, KindForPath("spork"))
}
