// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"gopkg.spork.dev/compiler.go/internal/fs"
	"gopkg.spork.dev/compiler.go/internal/idl"
)

// EnvSearchPath lists extra search roots, separated like PATH.
const EnvSearchPath = "SPORK_PATH"

// NewDefaultFS searches the roots named by SPORK_PATH, or the platform data
// directories when it is unset.
func NewDefaultFS(lookup func(string) (string, bool)) (idl.FileSystem, error) {
	roots := getDefaultRoots(lookup)
	if v, ok := lookup(EnvSearchPath); ok && v != "" {
		roots = filepath.SplitList(v)
	}
	f, err := NewRootsFS(roots)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// NewRootsFS combines local file systems for each root, searched in order.
func NewRootsFS(roots []string) (fs.FileSystemMulti, error) {
	f := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
