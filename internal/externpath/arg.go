// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package externpath

import "strings"

// Arg holds one --external=crate_name,file_descriptor_path argument.
type Arg struct {
	Crate CrateName
	// DescriptorSet is the path to the descriptor set. It is not checked.
	DescriptorSet string
}

// ParseArg parses s as crate_name,file_descriptor_path. Only the text is
// validated, not the file it names.
func ParseArg(s string) (Arg, error) {
	if strings.Count(s, ",") != 1 {
		return Arg{}, &ArgError{Argument: s, Err: ErrInvalidArgument}
	}
	crateName, path, _ := strings.Cut(s, ",")
	crate, err := ParseCrateName(crateName)
	if err != nil {
		return Arg{}, &ArgError{Argument: s, Err: err}
	}
	if path == "" {
		return Arg{}, &ArgError{Argument: s, Err: ErrEmptyFilename}
	}
	return Arg{
		Crate:         crate,
		DescriptorSet: path,
	}, nil
}

func (a Arg) String() string {
	return a.Crate.String() + "," + a.DescriptorSet
}
