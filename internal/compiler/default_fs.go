// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"gopkg.microglot.org/webidl.go/internal/fs"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// PathEnv names an optional list of search roots, separated like PATH, that
// are searched before the platform data directories.
const PathEnv = "WEBIDL_PATH"

// NewDefaultFS searches the roots named by PathEnv followed by the webidl
// directory of each platform data directory.
func NewDefaultFS(lookup func(string) (string, bool)) (idl.FileSystem, error) {
	roots := defaultRoots(lookup)
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

func defaultRoots(lookup func(string) (string, bool)) []string {
	roots := []string{}
	if v, ok := lookup(PathEnv); ok {
		for _, p := range filepath.SplitList(v) {
			if p != "" {
				roots = append(roots, p)
			}
		}
	}
	return append(roots, getDefaultRoots(lookup)...)
}
