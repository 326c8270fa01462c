// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"

	"gopkg.spork.dev/compiler.go/internal/exc"
	"gopkg.spork.dev/compiler.go/internal/idl"
)

func bodyFromIO(v io.ReadCloser) idl.FileBody {
	return &ioFileBody{rc: v}
}

type ioFileBody struct {
	rc io.ReadCloser
	b  []byte
}

// Read returns up to size bytes. The end of the body is signalled with a
// CodeEOF exception that wraps io.EOF.
func (self *ioFileBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if len(self.b) < int(size) {
		self.b = make([]byte, size)
	}
	count, err := self.rc.Read(self.b[:size])
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	if errors.Is(err, io.EOF) {
		return self.b[:count], exc.Wrap(exc.Location{}, exc.CodeEOF, err)
	}
	return self.b[:count], nil
}

func (self *ioFileBody) Close(ctx context.Context) error {
	return self.rc.Close()
}

// ioFromBody is the reverse of bodyFromIO so that a FileBody can be handed to
// io helpers.
func ioFromBody(ctx context.Context, body idl.FileBody) io.Reader {
	return &bodyReader{ctx: ctx, body: body}
}

type bodyReader struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *bodyReader) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	if errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, err
}
