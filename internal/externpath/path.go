// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package externpath computes the Rust paths prost will generate for the
// top-level messages and enums of a descriptor set, so that other crates can
// reference those types through extern_path instead of generating them again.
package externpath

// ExternPath maps a fully qualified protobuf name to the Rust path of its
// generated type.
type ExternPath struct {
	// Package is the fully qualified protobuf name, e.g.
	// .google.protobuf.FileDescriptorProto.
	Package string `json:"package" yaml:"package"`
	// Path is the fully qualified Rust path, e.g.
	// ::prost_types::google::protobuf::FileDescriptorProto.
	Path string `json:"path" yaml:"path"`
}

// Option renders the mapping as a protoc-gen-prost extern_path option.
func (p ExternPath) Option() string {
	return "extern_path=" + p.Package + "=" + p.Path
}

func (p ExternPath) String() string {
	return p.Package + "=" + p.Path
}
