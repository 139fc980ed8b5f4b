// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package externpath

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned for external arguments that are not of
	// the form crate_name,file_descriptor_path.
	ErrInvalidArgument = errors.New("external arguments must be of the form --external=crate_name,file_descriptor_path")
	// ErrInvalidCrate is returned for crate names that are not identifiers.
	ErrInvalidCrate = errors.New("crate name is not valid")
	// ErrEmptyFilename is returned when the descriptor path of an external
	// argument is empty.
	ErrEmptyFilename = errors.New("an empty filename was provided")
	// ErrPackageNameUnset is returned for files without a package.
	ErrPackageNameUnset = errors.New("package name not set")
	// ErrMissingName is returned for declarations without a name.
	ErrMissingName = errors.New("name was not set")
)

// ArgError reports a malformed external argument.
type ArgError struct {
	Argument string
	Err      error
}

func (e *ArgError) Error() string {
	switch e.Err {
	case ErrInvalidArgument:
		return fmt.Sprintf("invalid argument `%s`: %s", e.Argument, e.Err)
	case ErrInvalidCrate:
		crate, _, _ := strings.Cut(e.Argument, ",")
		return fmt.Sprintf("crate name `%s` in argument external=`%s` is not valid", crate, e.Argument)
	case ErrEmptyFilename:
		return fmt.Sprintf("an empty filename was provided in argument `%s`", e.Argument)
	default:
		return fmt.Sprintf("argument `%s`: %s", e.Argument, e.Err)
	}
}

func (e *ArgError) Unwrap() error {
	return e.Err
}

// DeclarationError locates a failure at a top-level declaration of a file.
type DeclarationError struct {
	Kind  DeclarationKind
	Index int
	Err   error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("unable to load %s for %s[%d]: %s", e.Kind.descriptorName(), e.Kind, e.Index, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// FileError locates a failure at a file of a descriptor set.
type FileError struct {
	Index int
	// Name is the file name recorded in the descriptor, if any.
	Name string
	Err  error
}

func (e *FileError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unable to load FileDescriptorProto file[%d]: %s", e.Index, e.Err)
	}
	return fmt.Sprintf("unable to load FileDescriptorProto file[%d] (%s): %s", e.Index, e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
