// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/fs"
	"gopkg.microglot.org/prostgen.go/internal/idl"
)

// SubCompilerDescriptorSet decodes binary FileDescriptorSet files such as the
// output of protoc --descriptor_set_out.
type SubCompilerDescriptorSet struct{}

func (self *SubCompilerDescriptorSet) CompileFile(ctx context.Context, r exc.Reporter, file idl.File) (*descriptorpb.FileDescriptorSet, error) {
	b, err := fs.ReadAll(ctx, file)
	if err != nil {
		return nil, r.Report(asException(exc.Location{URI: file.Path(ctx)}, exc.CodeUnknownFatal, err))
	}
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(b, set); err != nil {
		return nil, r.Report(exc.Wrap(exc.Location{URI: file.Path(ctx)}, exc.CodeDescriptorDecode, err))
	}
	return set, nil
}
