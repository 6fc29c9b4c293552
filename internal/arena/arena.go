// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package arena provides the append-only constant payload buffer.
package arena

import "golang.org/x/image/math/f32"

// Arena is a contiguous buffer of four-lane float vectors.
// Runs are addressed by offset and length, never by pointer, so growth of
// the backing slice does not invalidate recorded references.
type Arena struct {
	vecs []f32.Vec4
}

// New creates an arena with room for capacity vectors.
func New(capacity int) *Arena {
	return &Arena{vecs: make([]f32.Vec4, 0, capacity)}
}

// Append copies data to the end of the arena and returns its offset.
func (a *Arena) Append(data []f32.Vec4) uint32 {
	// #nosec G115 -- arena is reset every frame
	off := uint32(len(a.vecs))
	a.vecs = append(a.vecs, data...)
	return off
}

// AppendFloats packs raw float lanes into vectorCount vectors, four lanes
// per vector. Missing lanes are zero; extra lanes are ignored.
func (a *Arena) AppendFloats(raw []float32, vectorCount uint32) uint32 {
	// #nosec G115 -- arena is reset every frame
	off := uint32(len(a.vecs))
	for i := uint32(0); i < vectorCount; i++ {
		var v f32.Vec4
		base := int(i) * 4
		for lane := 0; lane < 4 && base+lane < len(raw); lane++ {
			v[lane] = raw[base+lane]
		}
		a.vecs = append(a.vecs, v)
	}
	return off
}

// Slice returns n vectors starting at offset. The result aliases the
// arena and is valid until the next Reset.
func (a *Arena) Slice(offset, n uint32) []f32.Vec4 {
	return a.vecs[offset : offset+n : offset+n]
}

// Len returns the number of stored vectors.
func (a *Arena) Len() int {
	return len(a.vecs)
}

// Vectors returns the whole buffer.
func (a *Arena) Vectors() []f32.Vec4 {
	return a.vecs
}

// Reset empties the arena, keeping its capacity.
func (a *Arena) Reset() {
	a.vecs = a.vecs[:0]
}
