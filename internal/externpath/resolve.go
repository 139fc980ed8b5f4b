// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package externpath

import (
	"google.golang.org/protobuf/types/descriptorpb"
)

// ResolveSet collects the extern paths of every file of the set, in file
// order. The first file that fails aborts the resolution with a *FileError
// and no paths are returned. An empty set is not an error.
func ResolveSet(crate CrateName, set *descriptorpb.FileDescriptorSet) ([]ExternPath, error) {
	out := []ExternPath{}
	for index, file := range set.GetFile() {
		paths, err := ResolveFile(crate, file)
		if err != nil {
			return nil, &FileError{Index: index, Name: file.GetName(), Err: err}
		}
		out = append(out, paths...)
	}
	return out, nil
}

// ResolveFile creates an ExternPath for every top-level message and enum of
// the file, messages first.
//
// Nested declarations are left out on purpose: a message cannot be reopened in
// another file, so prost can derive nested paths from the top-level ones.
func ResolveFile(crate CrateName, file *descriptorpb.FileDescriptorProto) ([]ExternPath, error) {
	// An empty package would produce an empty module path segment.
	if file.GetPackage() == "" {
		return nil, ErrPackageNameUnset
	}
	b := NewBuilder(crate, file.GetPackage())
	out := make([]ExternPath, 0, len(file.GetMessageType())+len(file.GetEnumType()))
	for index, message := range file.GetMessageType() {
		path, err := b.From(Message(message))
		if err != nil {
			return nil, &DeclarationError{Kind: KindMessage, Index: index, Err: err}
		}
		out = append(out, path)
	}
	for index, enum := range file.GetEnumType() {
		path, err := b.From(Enum(enum))
		if err != nil {
			return nil, &DeclarationError{Kind: KindEnum, Index: index, Err: err}
		}
		out = append(out, path)
	}
	return out, nil
}
