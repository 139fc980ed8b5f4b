// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/linker"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/fs"
	"gopkg.microglot.org/prostgen.go/internal/idl"
)

// SubCompilerProtobuf compiles protobuf sources. Imports are resolved through
// FS, with the well-known protos shipped with protoc always available.
type SubCompilerProtobuf struct {
	FS             idl.FileSystem
	Logger         logrus.FieldLogger
	MaxParallelism int
}

// CompileFile returns the descriptor of file alone. Its imports are compiled
// to link it but are not part of the result.
func (self *SubCompilerProtobuf) CompileFile(ctx context.Context, r exc.Reporter, file idl.File) (*descriptorpb.FileDescriptorSet, error) {
	files, err := self.compile(ctx, r, []string{importPath(file.Path(ctx))})
	if err != nil || files == nil {
		return nil, err
	}
	return &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{protodesc.ToFileDescriptorProto(files[0])},
	}, nil
}

// CompileImage compiles the named files and returns them together with all
// of their imports, each file after its dependencies.
func (self *SubCompilerProtobuf) CompileImage(ctx context.Context, r exc.Reporter, names []string) (*descriptorpb.FileDescriptorSet, error) {
	files, err := self.compile(ctx, r, names)
	if err != nil || files == nil {
		return nil, err
	}
	set := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	for _, f := range files {
		appendWithImports(set, f, seen)
	}
	return set, nil
}

func (self *SubCompilerProtobuf) compile(ctx context.Context, r exc.Reporter, names []string) (linker.Files, error) {
	rep := &protoReporter{Reporter: r, Logger: self.Logger}
	c := &protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: func(path string) (io.ReadCloser, error) {
				return self.open(ctx, path)
			},
		}),
		MaxParallelism: self.MaxParallelism,
		Reporter:       rep,
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	files, err := c.Compile(ctx, names...)
	if err == nil {
		return files, nil
	}
	if rep.reported.Load() > 0 || errors.Is(err, reporter.ErrInvalidSource) {
		// Already reported by protoReporter.
		return nil, err
	}
	loc := exc.Location{}
	if len(names) == 1 {
		loc.URI = names[0]
	}
	return nil, r.Report(asException(loc, exc.CodeProtobufParseError, err))
}

func (self *SubCompilerProtobuf) open(ctx context.Context, path string) (io.ReadCloser, error) {
	files, err := self.FS.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(files) != 1 {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeFileNotFound, "not a file")
	}
	body, err := files[0].Body(ctx)
	if err != nil {
		return nil, err
	}
	return fs.NewReader(ctx, body), nil
}

func appendWithImports(set *descriptorpb.FileDescriptorSet, f protoreflect.FileDescriptor, seen map[string]bool) {
	if seen[f.Path()] {
		return
	}
	seen[f.Path()] = true
	imports := f.Imports()
	for x := 0; x < imports.Len(); x = x + 1 {
		appendWithImports(set, imports.Get(x).FileDescriptor, seen)
	}
	set.File = append(set.File, protodesc.ToFileDescriptorProto(f))
}

// importPath converts a file system path into the name protobuf imports use.
func importPath(path string) string {
	return strings.TrimPrefix(path, "/")
}

type protoReporter struct {
	Reporter exc.Reporter
	Logger   logrus.FieldLogger
	reported atomic.Int32
}

func (self *protoReporter) Error(e reporter.ErrorWithPos) error {
	pos := e.GetPosition()
	loc := exc.Location{
		URI: pos.Filename,
		Location: idl.Location{
			Line:   int32(pos.Line),
			Column: int32(pos.Col),
			Offset: int64(pos.Offset),
		},
	}
	self.reported.Add(1)
	return self.Reporter.Report(exc.Wrap(loc, exc.CodeProtobufParseError, e.Unwrap()))
}

func (self *protoReporter) Warning(e reporter.ErrorWithPos) {
	pos := e.GetPosition()
	self.Logger.WithFields(logrus.Fields{
		"file":   pos.Filename,
		"line":   pos.Line,
		"column": pos.Col,
	}).Warn(e.Unwrap().Error())
}
