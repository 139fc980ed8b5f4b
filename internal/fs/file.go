// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bytes"
	"context"
	"io"

	"gopkg.microglot.org/prostgen.go/internal/idl"
)

// NewFileBytes returns an in-memory file. Its kind follows the extension of
// path, as for files opened from disk.
func NewFileBytes(path string, content []byte) idl.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}, KindOf(path))
}

// NewFileFN returns a file whose content is opened on demand. open is called
// once per Body call and must return a fresh handle each time.
func NewFileFN(path string, open func() (io.ReadCloser, error), kind idl.FileKind) idl.File {
	return &lazyFile{
		path: path,
		kind: kind,
		open: open,
	}
}

type lazyFile struct {
	path string
	kind idl.FileKind
	open func() (io.ReadCloser, error)
}

func (f *lazyFile) Path(ctx context.Context) string {
	return f.path
}

func (f *lazyFile) Kind(ctx context.Context) idl.FileKind {
	return f.kind
}

func (f *lazyFile) Body(ctx context.Context) (idl.FileBody, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := f.open()
	if err != nil {
		return nil, err
	}
	return bodyFromIO(rc), nil
}
