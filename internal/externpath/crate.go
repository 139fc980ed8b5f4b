// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package externpath

import "strings"

// CrateName is a validated Rust crate name.
//
// A valid crate name is an identifier that may also contain '-'. Cargo and
// rules_rust both turn '-' into '_' for the name used in source code, which is
// what ForSource returns.
type CrateName struct {
	name string
}

// ParseCrateName validates s as a crate name.
func ParseCrateName(s string) (CrateName, error) {
	if !validCrate(s) {
		return CrateName{}, ErrInvalidCrate
	}
	return CrateName{name: s}, nil
}

// MustParseCrateName is like ParseCrateName but panics on invalid input.
func MustParseCrateName(s string) CrateName {
	c, err := ParseCrateName(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CrateName) String() string {
	return c.name
}

// ForSource returns the crate name as it is written in Rust paths.
func (c CrateName) ForSource() string {
	return strings.ReplaceAll(c.name, "-", "_")
}

func validCrate(name string) bool {
	if name == "" || !isASCIILetter(name[0]) {
		return false
	}
	for x := 0; x < len(name); x = x + 1 {
		c := name[x]
		if !isASCIILetter(c) && !('0' <= c && c <= '9') && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
