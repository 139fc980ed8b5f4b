// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package compiler

import (
	"os"
	"path/filepath"
	"strings"
)

// getDefaultRoots returns the directories protoc installations place the
// well-known and vendored protos in. PROTOC_INCLUDE may list extra
// directories, separated by ':', which are searched first.
func getDefaultRoots(lookup func(string) (string, bool)) []string {
	roots := []string{}
	if extra, ok := lookup("PROTOC_INCLUDE"); ok && extra != "" {
		for _, dir := range strings.Split(extra, ":") {
			if dir == "" {
				continue
			}
			dir = os.Expand(dir, func(s string) string {
				v, _ := lookup(s)
				return v
			})
			roots = append(roots, filepath.Clean(dir))
		}
	}
	return append(roots, "/usr/local/include", "/usr/include")
}
