// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/idl"
)

// SubCompiler turns one input file into the descriptors it declares.
type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File) (*descriptorpb.FileDescriptorSet, error)
}

// DefaultSubCompilers maps every file kind to its sub-compiler. Files of an
// unknown kind are assumed to be serialized descriptor sets since build tools
// name them freely.
func DefaultSubCompilers(fs idl.FileSystem, logger logrus.FieldLogger) map[idl.FileKind]SubCompiler {
	desc := &SubCompilerDescriptorSet{}
	return map[idl.FileKind]SubCompiler{
		idl.FileKindNone:         desc,
		idl.FileKindProtobufDesc: desc,
		idl.FileKindProtobuf: &SubCompilerProtobuf{
			FS:     fs,
			Logger: logger,
		},
	}
}
