// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpustate

import (
	"fmt"
	"image"

	"github.com/gogpu/drawstream"
)

// Op identifies a native render pass call.
type Op uint8

const (
	OpBeginRenderPass Op = iota
	OpSetPipeline
	OpSetBindGroup
	OpSetScissorRect
	OpSetViewport
	OpWriteBuffer
	OpSetVertexBuffer
	OpDrawIndexed
	OpDraw
)

var opNames = [...]string{
	OpBeginRenderPass: "beginRenderPass",
	OpSetPipeline:     "setPipeline",
	OpSetBindGroup:    "setBindGroup",
	OpSetScissorRect:  "setScissorRect",
	OpSetViewport:     "setViewport",
	OpWriteBuffer:     "writeBuffer",
	OpSetVertexBuffer: "setVertexBuffer",
	OpDrawIndexed:     "drawIndexed",
	OpDraw:            "draw",
}

// String returns the WebGPU method name of the op.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Bind group indices used by the replay.
const (
	GroupUniforms uint32 = iota
	GroupVSResources
	GroupPSResources
)

// Call is one native call the replay would issue. Only the fields that
// apply to Op are set.
type Call struct {
	Op Op

	// Pipeline is the pipeline id for OpSetPipeline.
	Pipeline uint64
	// Group is the bind group index for OpSetBindGroup.
	Group uint32
	// Stage and Slot address OpWriteBuffer constant buffer uploads.
	Stage drawstream.ShaderStage
	Slot  uint32
	// Bytes is the upload size of OpWriteBuffer.
	Bytes int
	// Rect is the rectangle of OpSetScissorRect and OpSetViewport. An
	// empty Rect covers the whole target.
	Rect image.Rectangle
	// Target is the render target of OpBeginRenderPass.
	Target drawstream.TextureID
	// Batch is the vertex batch of OpSetVertexBuffer.
	Batch uint32

	First     uint32
	Count     uint32
	Instances uint32
}

// String formats the call like a method invocation.
func (c Call) String() string {
	switch c.Op {
	case OpBeginRenderPass:
		if !c.Target.IsValid() {
			return "beginRenderPass(surface)"
		}
		return fmt.Sprintf("beginRenderPass(texture %d)", c.Target)
	case OpSetPipeline:
		return fmt.Sprintf("setPipeline(%#x)", c.Pipeline)
	case OpSetBindGroup:
		return fmt.Sprintf("setBindGroup(%d)", c.Group)
	case OpSetScissorRect, OpSetViewport:
		if c.Rect.Empty() {
			return c.Op.String() + "(full)"
		}
		return fmt.Sprintf("%s(%d, %d, %d, %d)", c.Op, c.Rect.Min.X, c.Rect.Min.Y, c.Rect.Dx(), c.Rect.Dy())
	case OpWriteBuffer:
		return fmt.Sprintf("writeBuffer(%s, %d, %d bytes)", c.Stage, c.Slot, c.Bytes)
	case OpSetVertexBuffer:
		return fmt.Sprintf("setVertexBuffer(%d)", c.Batch)
	case OpDrawIndexed:
		return fmt.Sprintf("drawIndexed(%d, %d, %d)", c.Count, c.Instances, c.First)
	case OpDraw:
		return fmt.Sprintf("draw(%d, %d)", c.Count, c.Instances)
	}
	return c.Op.String()
}
