// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/gogpu/drawstream"
)

func init() {
	drawstream.Register("capture", func() drawstream.Backend {
		return NewBackend()
	})
}

// Backend encodes each replayed frame into an in-memory capture.
type Backend struct {
	frame *drawstream.Frame
	buf   bytes.Buffer
	n     int
}

var (
	_ drawstream.Backend       = (*Backend)(nil)
	_ drawstream.WriterBackend = (*Backend)(nil)
)

// NewBackend creates a capture backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Begin remembers the frame to encode.
func (b *Backend) Begin(f *drawstream.Frame) error {
	b.frame = f
	b.n = 0
	return nil
}

// Apply counts the command. The frame is encoded as a whole in End.
func (b *Backend) Apply(*drawstream.Frame, drawstream.Command) error {
	b.n++
	return nil
}

// End encodes the frame.
func (b *Backend) End() error {
	b.buf.Reset()
	if err := Encode(&b.buf, b.frame); err != nil {
		return err
	}
	drawstream.Logger().Debug("capture: frame encoded",
		slog.Int("commands", b.n),
		slog.Int("bytes", b.buf.Len()))
	b.frame = nil
	return nil
}

// Bytes returns the last encoded capture.
func (b *Backend) Bytes() []byte { return b.buf.Bytes() }

// WriteTo writes the last encoded capture to w.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf.Bytes())
	return int64(n), err
}
