// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/idl"
)

func bodyFromIO(v io.ReadCloser) idl.FileBody {
	return &ioFileBody{rc: v}
}

type ioFileBody struct {
	rc io.ReadCloser
	b  []byte
}

func (self *ioFileBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if len(self.b) < int(size) {
		self.b = make([]byte, size)
	}
	count, err := self.rc.Read(self.b[:size])
	if err != nil && err != io.EOF {
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	if err == io.EOF {
		return self.b[:count], exc.Wrap(exc.Location{}, exc.CodeEOF, err)
	}
	return self.b[:count], nil
}

func (self *ioFileBody) Close(ctx context.Context) error {
	return self.rc.Close()
}

// NewReader adapts a FileBody to io.ReadCloser for libraries that consume
// the standard interfaces.
func NewReader(ctx context.Context, body idl.FileBody) io.ReadCloser {
	return &fileBodyIO{ctx: ctx, body: body}
}

// ReadAll returns the full content of f.
func ReadAll(ctx context.Context, f idl.File) ([]byte, error) {
	b, err := f.Body(ctx)
	if err != nil {
		return nil, fsErr(f.Path(ctx), err)
	}
	rc := NewReader(ctx, b)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: f.Path(ctx)}, err)
	}
	return content, nil
}

type fileBodyIO struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	if err != nil && !errors.Is(err, io.EOF) {
		return len(b), err
	}
	copy(p, b)
	if errors.Is(err, io.EOF) {
		return len(b), io.EOF
	}
	return len(b), nil
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
