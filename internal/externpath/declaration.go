// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package externpath

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/optional"
)

// Named is a top-level declaration of a file. Only messages and enums can be
// referenced through an extern path, see Message and Enum.
type Named interface {
	Name() optional.Optional[string]
}

// Message adapts a message descriptor to Named.
func Message(d *descriptorpb.DescriptorProto) Named {
	return messageDecl{d}
}

// Enum adapts an enum descriptor to Named.
func Enum(d *descriptorpb.EnumDescriptorProto) Named {
	return enumDecl{d}
}

type messageDecl struct {
	d *descriptorpb.DescriptorProto
}

func (m messageDecl) Name() optional.Optional[string] {
	if m.d == nil {
		return optional.None[string]()
	}
	return optional.FromPointer(m.d.Name)
}

type enumDecl struct {
	d *descriptorpb.EnumDescriptorProto
}

func (e enumDecl) Name() optional.Optional[string] {
	if e.d == nil {
		return optional.None[string]()
	}
	return optional.FromPointer(e.d.Name)
}

// DeclarationKind distinguishes the declarations of a file.
type DeclarationKind uint8

const (
	KindMessage DeclarationKind = iota
	KindEnum
)

func (k DeclarationKind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

func (k DeclarationKind) descriptorName() string {
	switch k {
	case KindMessage:
		return "DescriptorProto"
	case KindEnum:
		return "EnumDescriptorProto"
	default:
		return "descriptor"
	}
}
