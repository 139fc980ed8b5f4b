// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package externpath

import (
	"strings"

	"gopkg.microglot.org/prostgen.go/internal/ident"
)

// Builder resolves the declarations of a single protobuf package within a
// crate. The crate and module part of the path is computed once.
type Builder struct {
	pkg    string
	prefix string
}

// NewBuilder returns a Builder for the given crate and protobuf package.
func NewBuilder(crate CrateName, pkg string) *Builder {
	return &Builder{
		pkg:    pkg,
		prefix: "::" + crate.ForSource() + "::" + ModulePath(pkg) + "::",
	}
}

// From resolves the extern path of a declaration. It fails with
// ErrMissingName if the declaration has no name.
func (b *Builder) From(d Named) (ExternPath, error) {
	name := d.Name()
	if !name.IsPresent() {
		return ExternPath{}, ErrMissingName
	}
	return ExternPath{
		Path:    b.prefix + ident.ToUpperCamel(name.Value()),
		Package: "." + b.pkg + "." + name.Value(),
	}, nil
}

// ModulePath converts a protobuf package to the Rust module path prost
// generates for it. Segments are not validated.
func ModulePath(pkg string) string {
	segments := strings.Split(pkg, ".")
	for x, segment := range segments {
		segments[x] = ident.ToSnake(segment)
	}
	return strings.Join(segments, "::")
}
