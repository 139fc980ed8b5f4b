// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package compiler

import (
	"path/filepath"
	"strings"
)

func getDefaultRoots(lookup func(string) (string, bool)) []string {
	roots := []string{}
	if extra, ok := lookup("PROTOC_INCLUDE"); ok && extra != "" {
		for _, dir := range strings.Split(extra, ";") {
			if dir != "" {
				roots = append(roots, filepath.Clean(dir))
			}
		}
	}
	userprofile, _ := lookup("USERPROFILE")
	systemdrive, _ := lookup("SystemDrive")
	return append(roots,
		filepath.Join(userprofile, "AppData", "Local", "protobuf", "include"),
		filepath.Join(systemdrive, "ProgramData", "protobuf", "include"),
	)
}
