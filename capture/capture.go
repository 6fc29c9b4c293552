// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package capture stores recorded frames in a compact binary file so they
// can be replayed later into any backend.
//
// A capture file starts with a fixed header:
//
//	magic   [4]byte  "DSCF"
//	version uint16   little endian
//
// followed by an LZ4 frame that holds the frame arrays. Every array is a
// uint32 element count followed by the elements in little-endian order,
// in the order of the drawstream.FrameData fields.
//
// Decoded frames carry no resource handles: textures, meshes and shaders
// are identified by their ids only.
package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/gogpu/drawstream"
)

// Version is the capture format version written by Encode.
const Version uint16 = 1

// Magic identifies a capture file.
const Magic = "DSCF"

// maxElements bounds a single array so corrupt input cannot force a huge
// allocation.
const maxElements = 1 << 24

var (
	// ErrBadMagic is returned when the input is not a capture file.
	ErrBadMagic = errors.New("capture: bad magic")

	// ErrVersion is returned for a capture written by an unknown format
	// version.
	ErrVersion = errors.New("capture: unsupported version")

	// ErrCorrupt is returned when an array header is out of bounds.
	ErrCorrupt = errors.New("capture: corrupt data")
)

var order = binary.LittleEndian

// rect is the fixed-size wire form of image.Rectangle.
type rect struct {
	MinX, MinY, MaxX, MaxY int32
}

type viewport struct {
	Rect    rect
	Enabled bool
}

func toRect(r image.Rectangle) rect {
	return rect{int32(r.Min.X), int32(r.Min.Y), int32(r.Max.X), int32(r.Max.Y)}
}

func (r rect) image() image.Rectangle {
	return image.Rect(int(r.MinX), int(r.MinY), int(r.MaxX), int(r.MaxY))
}

// Encode writes f to w.
func Encode(w io.Writer, f *drawstream.Frame) error {
	var hdr [6]byte
	copy(hdr[:4], Magic)
	order.PutUint16(hdr[4:], Version)
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("capture: write header: %w", err)
	}

	zw := lz4.NewWriter(w)
	e := &encoder{w: zw}
	e.frame(f.Data())
	if e.err != nil {
		return fmt.Errorf("capture: encode: %w", e.err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("capture: compress: %w", err)
	}
	return nil
}

// Decode reads a frame written by Encode. The frame is validated before
// it is returned, so it can be replayed safely.
func Decode(r io.Reader) (*drawstream.Frame, error) {
	var hdr [6]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("capture: read header: %w", err)
	}
	if !bytes.Equal(hdr[:4], []byte(Magic)) {
		return nil, fmt.Errorf("%w %q", ErrBadMagic, hdr[:4])
	}
	if v := order.Uint16(hdr[4:]); v != Version {
		return nil, fmt.Errorf("%w %d (want %d)", ErrVersion, v, Version)
	}

	d := &decoder{r: lz4.NewReader(r)}
	data := d.frame()
	if d.err != nil {
		return nil, fmt.Errorf("capture: decode: %w", d.err)
	}

	f := drawstream.NewFrame(data)
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return f, nil
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) frame(d drawstream.FrameData) {
	put(e, d.Commands)
	put(e, d.Draws)
	put(e, d.Lines)
	put(e, d.MeshDraws)
	put(e, d.NullDraws)
	put(e, d.ConstantBuffers)
	put(e, d.Constants)

	put(e, d.BlendStates)
	put(e, d.RasterizerStates)
	put(e, d.DepthStencilStates)
	for i := range d.VSSamplerStates {
		put(e, d.VSSamplerStates[i])
	}
	for i := range d.PSSamplerStates {
		put(e, d.PSSamplerStates[i])
	}

	rects := make([]rect, len(d.ScissorRects))
	for i, r := range d.ScissorRects {
		rects[i] = toRect(r)
	}
	put(e, rects)
	vps := make([]viewport, len(d.Viewports))
	for i, v := range d.Viewports {
		vps[i] = viewport{Rect: toRect(v.Rect), Enabled: v.Enabled}
	}
	put(e, vps)

	put(e, d.SDFParams)
	put(e, d.RenderTargets)
	put(e, d.InputLayouts)
	put(e, d.VertexShaders)
	put(e, d.PixelShaders)
	put(e, d.ColorMuls)
	put(e, d.ColorAdds)
	put(e, d.CombinedTransforms)
	put(e, d.CameraTransforms)
	put(e, d.EyePositions)
	put(e, d.LocalTransforms)
	put(e, d.UVTransforms)
	for i := range d.VSTextures {
		put(e, d.VSTextures[i])
	}
	for i := range d.PSTextures {
		put(e, d.PSTextures[i])
	}
	put(e, d.Meshes)
	put(e, d.GlobalAmbientColors)
	put(e, d.SunDirections)
	put(e, d.SunColors)
}

// put writes the length and elements of s. Elements must be fixed size.
func put[T any](e *encoder, s []T) {
	if e.err != nil {
		return
	}
	if e.err = binary.Write(e.w, order, uint32(len(s))); e.err != nil {
		return
	}
	if len(s) > 0 {
		e.err = binary.Write(e.w, order, s)
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) frame() drawstream.FrameData {
	var f drawstream.FrameData

	get(d, &f.Commands)
	get(d, &f.Draws)
	get(d, &f.Lines)
	get(d, &f.MeshDraws)
	get(d, &f.NullDraws)
	get(d, &f.ConstantBuffers)
	get(d, &f.Constants)

	get(d, &f.BlendStates)
	get(d, &f.RasterizerStates)
	get(d, &f.DepthStencilStates)
	for i := range f.VSSamplerStates {
		get(d, &f.VSSamplerStates[i])
	}
	for i := range f.PSSamplerStates {
		get(d, &f.PSSamplerStates[i])
	}

	var rects []rect
	get(d, &rects)
	if rects != nil {
		f.ScissorRects = make([]image.Rectangle, len(rects))
		for i, r := range rects {
			f.ScissorRects[i] = r.image()
		}
	}
	var vps []viewport
	get(d, &vps)
	if vps != nil {
		f.Viewports = make([]drawstream.Viewport, len(vps))
		for i, v := range vps {
			f.Viewports[i] = drawstream.Viewport{Rect: v.Rect.image(), Enabled: v.Enabled}
		}
	}

	get(d, &f.SDFParams)
	get(d, &f.RenderTargets)
	get(d, &f.InputLayouts)
	get(d, &f.VertexShaders)
	get(d, &f.PixelShaders)
	get(d, &f.ColorMuls)
	get(d, &f.ColorAdds)
	get(d, &f.CombinedTransforms)
	get(d, &f.CameraTransforms)
	get(d, &f.EyePositions)
	get(d, &f.LocalTransforms)
	get(d, &f.UVTransforms)
	for i := range f.VSTextures {
		get(d, &f.VSTextures[i])
	}
	for i := range f.PSTextures {
		get(d, &f.PSTextures[i])
	}
	get(d, &f.Meshes)
	get(d, &f.GlobalAmbientColors)
	get(d, &f.SunDirections)
	get(d, &f.SunColors)
	return f
}

// get reads an array written by put. Empty arrays decode to nil.
func get[T any](d *decoder, dst *[]T) {
	if d.err != nil {
		return
	}
	var n uint32
	if d.err = binary.Read(d.r, order, &n); d.err != nil {
		return
	}
	if n > maxElements {
		d.err = fmt.Errorf("%w: array of %d elements", ErrCorrupt, n)
		return
	}
	if n == 0 {
		*dst = nil
		return
	}
	s := make([]T, n)
	if d.err = binary.Read(d.r, order, s); d.err != nil {
		return
	}
	*dst = s
}
