// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

const (
	CodeUnknownFatal                  = "P0000"
	CodeFileNotFound                  = "P0001"
	CodeUnsuportedFileSystemOperation = "P0002"
	CodePermissionDenied              = "P0003"
	CodeInvalidArgument               = "P0004"
	CodeDescriptorDecode              = "P0005"
	CodeProtobufParseError            = "P0006"
	CodeUnresolvableDescriptor        = "P0007"
	CodePluginFailure                 = "P0008"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
