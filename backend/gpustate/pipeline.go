// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpustate

import (
	"encoding/binary"
	"hash"
	"hash/fnv"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/drawstream"
)

// PipelineKey is the bound state that selects a render pipeline. Two draws
// with equal keys share one pipeline object.
type PipelineKey struct {
	VertexShader drawstream.ShaderID
	PixelShader  drawstream.ShaderID
	Layout       drawstream.InputLayout
	Topology     gputypes.PrimitiveTopology
	Blend        drawstream.BlendState
	Rasterizer   drawstream.RasterizerState
	DepthStencil drawstream.DepthStencilState
	ColorFormat  gputypes.TextureFormat
}

// Hash computes an FNV-1a hash over every field of the key.
func (k PipelineKey) Hash() uint64 {
	h := fnv.New64a()

	hashWriteUint32(h, uint32(k.VertexShader))
	hashWriteUint32(h, uint32(k.PixelShader))
	hashWriteUint32(h, uint32(k.Layout))
	hashWriteUint32(h, uint32(k.Topology))

	hashWriteBool(h, k.Blend.Enable)
	if k.Blend.Enable {
		hashWriteComponent(h, k.Blend.Color)
		hashWriteComponent(h, k.Blend.Alpha)
	}
	hashWriteUint32(h, uint32(k.Blend.WriteMask))
	hashWriteBool(h, k.Blend.AlphaToCoverage)

	hashWriteUint32(h, uint32(k.Rasterizer.Fill))
	hashWriteUint32(h, uint32(k.Rasterizer.CullMode))
	hashWriteUint32(h, uint32(k.Rasterizer.DepthBias))

	ds := k.DepthStencil
	hashWriteBool(h, ds.DepthEnable)
	hashWriteBool(h, ds.DepthWriteEnable)
	hashWriteUint32(h, uint32(ds.DepthCompare))
	hashWriteBool(h, ds.StencilEnable)
	hashWriteUint32(h, uint32(ds.StencilCompare))
	hashWriteUint32(h, uint32(ds.StencilReadMask)<<8|uint32(ds.StencilWriteMask))

	hashWriteUint32(h, uint32(k.ColorFormat))
	return h.Sum64()
}

// ColorTarget returns the color target state of the key.
func (k PipelineKey) ColorTarget() gputypes.ColorTargetState {
	return gputypes.ColorTargetState{
		Format:    k.ColorFormat,
		Blend:     ToBlendState(k.Blend),
		WriteMask: k.Blend.WriteMask,
	}
}

// Primitive returns the primitive state of the key. WebGPU has no
// wireframe fill, so wireframe triangles are drawn as a line list.
func (k PipelineKey) Primitive() gputypes.PrimitiveState {
	topology := k.Topology
	if k.Rasterizer.Fill == drawstream.FillWireframe && topology == gputypes.PrimitiveTopologyTriangleList {
		topology = gputypes.PrimitiveTopologyLineList
	}
	return gputypes.PrimitiveState{
		Topology: topology,
		CullMode: k.Rasterizer.CullMode,
	}
}

// DepthCompare returns the effective depth comparison. A disabled depth
// test always passes.
func (k PipelineKey) DepthCompare() gputypes.CompareFunction {
	if !k.DepthStencil.DepthEnable {
		return gputypes.CompareFunctionAlways
	}
	return k.DepthStencil.DepthCompare
}

// ToBlendState converts b to a WebGPU blend state. It returns nil when
// blending is disabled, which WebGPU treats as replace.
func ToBlendState(b drawstream.BlendState) *gputypes.BlendState {
	if !b.Enable {
		return nil
	}
	return &gputypes.BlendState{
		Color: toBlendComponent(b.Color),
		Alpha: toBlendComponent(b.Alpha),
	}
}

func toBlendComponent(c drawstream.BlendComponent) gputypes.BlendComponent {
	return gputypes.BlendComponent{
		SrcFactor: c.SrcFactor,
		DstFactor: c.DstFactor,
		Operation: c.Operation,
	}
}

func hashWriteComponent(h hash.Hash64, c drawstream.BlendComponent) {
	hashWriteUint32(h, uint32(c.SrcFactor))
	hashWriteUint32(h, uint32(c.DstFactor))
	hashWriteUint32(h, uint32(c.Operation))
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
