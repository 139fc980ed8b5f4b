// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/externpath"
)

type Closer interface {
	Close(ctx context.Context) error
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

// Location is a position within a source file. The zero value means the
// position is unknown, which is the case for binary descriptor sets.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindProtobuf
	FileKindProtobufDesc
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindProtobuf:
		return "protobuf"
	case FileKindProtobufDesc:
		return "protobuf-descriptor"
	default:
		return fmt.Sprintf("unkown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	// Glob returns the paths, relative to the file system root, matching the
	// given doublestar pattern.
	Glob(ctx context.Context, pattern string) ([]string, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	// Externals are unparsed crate_name,descriptor_set_path arguments.
	Externals []string
	// Files are the protobuf sources to compile. Each may be a glob.
	Files []string
}

type CompileResponse struct {
	// ExternPaths holds the resolved mapping of every external, in argument
	// order.
	ExternPaths []externpath.ExternPath
	// Targets are the expanded names of the compiled files.
	Targets []string
	// Image contains the compiled targets and all of their imports in
	// dependency order. It is empty when no files were requested.
	Image *descriptorpb.FileDescriptorSet
}
