package drawstream

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/drawstream/internal/reserve"
)

// ErrIndexRange is returned by Frame.Validate when a command references
// a position outside its target array.
var ErrIndexRange = errors.New("drawstream: command index out of range")

// FrameData is the flat content of a recorded frame: the command stream
// and every array a command can index into.
//
// Slices returned by Frame.Data alias the Manager's storage and must not
// be modified.
type FrameData struct {
	Commands        []Command
	Draws           []DrawBatch
	Lines           []LineBatch
	MeshDraws       []MeshDraw
	NullDraws       []uint32
	ConstantBuffers []ConstantBufferCommand
	Constants       []f32.Vec4

	BlendStates         []BlendState
	RasterizerStates    []RasterizerState
	DepthStencilStates  []DepthStencilState
	VSSamplerStates     [MaxSamplerCount][]SamplerState
	PSSamplerStates     [MaxSamplerCount][]SamplerState
	ScissorRects        []image.Rectangle
	Viewports           []Viewport
	SDFParams           []SDFParams
	RenderTargets       []TextureID
	InputLayouts        []InputLayout
	VertexShaders       []ShaderID
	PixelShaders        []ShaderID
	ColorMuls           []mgl32.Vec4
	ColorAdds           []mgl32.Vec4
	CombinedTransforms  []mgl32.Mat4
	CameraTransforms    []mgl32.Mat4
	EyePositions        []mgl32.Vec3
	LocalTransforms     []mgl32.Mat4
	UVTransforms        []mgl32.Vec4
	VSTextures          [MaxSamplerCount][]TextureID
	PSTextures          [MaxSamplerCount][]TextureID
	Meshes              []MeshID
	GlobalAmbientColors []mgl32.Vec3
	SunDirections       []mgl32.Vec3
	SunColors           []mgl32.Vec3
}

// resources holds the reservation tables of a frame.
type resources struct {
	textures *reserve.Table[TextureID, Texture]
	meshes   *reserve.Table[MeshID, Mesh]
	vs       *reserve.Table[ShaderID, VertexShader]
	ps       *reserve.Table[ShaderID, PixelShader]
	rts      *reserve.Table[TextureID, RenderTexture]
}

// Frame is a read-only view of a recorded frame.
//
// A Frame returned by Manager.Finish is valid until the next Reset of its
// Manager. A Frame built with NewFrame carries no resource handles.
type Frame struct {
	data FrameData
	res  *resources
}

// NewFrame wraps decoded frame content. Resource lookups on the result
// always report false.
func NewFrame(d FrameData) *Frame {
	return &Frame{data: d}
}

// Data returns the flat frame content.
func (f *Frame) Data() FrameData { return f.data }

// Commands returns the command stream.
func (f *Frame) Commands() []Command { return f.data.Commands }

// Len returns the number of commands.
func (f *Frame) Len() int { return len(f.data.Commands) }

func (f *Frame) BlendState(i uint32) BlendState               { return f.data.BlendStates[i] }
func (f *Frame) RasterizerState(i uint32) RasterizerState     { return f.data.RasterizerStates[i] }
func (f *Frame) DepthStencilState(i uint32) DepthStencilState { return f.data.DepthStencilStates[i] }
func (f *Frame) ScissorRect(i uint32) image.Rectangle         { return f.data.ScissorRects[i] }
func (f *Frame) Viewport(i uint32) Viewport                   { return f.data.Viewports[i] }
func (f *Frame) SDFParams(i uint32) SDFParams                 { return f.data.SDFParams[i] }
func (f *Frame) RenderTarget(i uint32) TextureID              { return f.data.RenderTargets[i] }
func (f *Frame) InputLayout(i uint32) InputLayout             { return f.data.InputLayouts[i] }
func (f *Frame) VertexShaderID(i uint32) ShaderID             { return f.data.VertexShaders[i] }
func (f *Frame) PixelShaderID(i uint32) ShaderID              { return f.data.PixelShaders[i] }
func (f *Frame) ColorMul(i uint32) mgl32.Vec4                 { return f.data.ColorMuls[i] }
func (f *Frame) ColorAdd(i uint32) mgl32.Vec4                 { return f.data.ColorAdds[i] }
func (f *Frame) CombinedTransform(i uint32) mgl32.Mat4        { return f.data.CombinedTransforms[i] }
func (f *Frame) CameraTransform(i uint32) mgl32.Mat4          { return f.data.CameraTransforms[i] }
func (f *Frame) EyePosition(i uint32) mgl32.Vec3              { return f.data.EyePositions[i] }
func (f *Frame) LocalTransform(i uint32) mgl32.Mat4           { return f.data.LocalTransforms[i] }
func (f *Frame) UVTransform(i uint32) mgl32.Vec4              { return f.data.UVTransforms[i] }
func (f *Frame) MeshID(i uint32) MeshID                       { return f.data.Meshes[i] }
func (f *Frame) GlobalAmbientColor(i uint32) mgl32.Vec3       { return f.data.GlobalAmbientColors[i] }
func (f *Frame) SunDirection(i uint32) mgl32.Vec3             { return f.data.SunDirections[i] }
func (f *Frame) SunColor(i uint32) mgl32.Vec3                 { return f.data.SunColors[i] }

// VSSamplerState returns history entry i of vertex sampler slot.
func (f *Frame) VSSamplerState(slot uint8, i uint32) SamplerState {
	return f.data.VSSamplerStates[slot][i]
}

// PSSamplerState returns history entry i of pixel sampler slot.
func (f *Frame) PSSamplerState(slot uint8, i uint32) SamplerState {
	return f.data.PSSamplerStates[slot][i]
}

// VSTextureID returns history entry i of vertex texture slot.
func (f *Frame) VSTextureID(slot uint8, i uint32) TextureID {
	return f.data.VSTextures[slot][i]
}

// PSTextureID returns history entry i of pixel texture slot.
func (f *Frame) PSTextureID(slot uint8, i uint32) TextureID {
	return f.data.PSTextures[slot][i]
}

// Draw returns triangle batch i.
func (f *Frame) Draw(i uint32) DrawBatch { return f.data.Draws[i] }

// Line returns line batch i.
func (f *Frame) Line(i uint32) LineBatch { return f.data.Lines[i] }

// MeshDraw returns mesh draw i.
func (f *Frame) MeshDraw(i uint32) MeshDraw { return f.data.MeshDraws[i] }

// NullDraw returns the vertex count of null draw i.
func (f *Frame) NullDraw(i uint32) uint32 { return f.data.NullDraws[i] }

// ConstantBuffer returns constant buffer record i.
func (f *Frame) ConstantBuffer(i uint32) ConstantBufferCommand {
	return f.data.ConstantBuffers[i]
}

// Constants returns the payload of cb.
func (f *Frame) Constants(cb ConstantBufferCommand) []f32.Vec4 {
	end := cb.Offset + cb.VectorCount
	return f.data.Constants[cb.Offset:end:end]
}

// Value resolves cmd to the value it references: a state value, a draw
// record, a ConstantBufferCommand, or the batch number of an upload
// marker.
func (f *Frame) Value(cmd Command) any {
	i := cmd.Index
	switch cmd.Type {
	case CmdUpdateBuffers, CmdUpdateLineBuffers:
		return i
	case CmdDraw:
		return f.Draw(i)
	case CmdDrawLine:
		return f.Line(i)
	case CmdDrawMesh:
		return f.MeshDraw(i)
	case CmdDrawNull:
		return f.NullDraw(i)
	case CmdSetConstantBuffer:
		return f.ConstantBuffer(i)
	case CmdBlendState:
		return f.BlendState(i)
	case CmdRasterizerState:
		return f.RasterizerState(i)
	case CmdDepthStencilState:
		return f.DepthStencilState(i)
	case CmdVSSamplerState:
		return f.VSSamplerState(cmd.Slot, i)
	case CmdPSSamplerState:
		return f.PSSamplerState(cmd.Slot, i)
	case CmdScissorRect:
		return f.ScissorRect(i)
	case CmdViewport:
		return f.Viewport(i)
	case CmdSDFParams:
		return f.SDFParams(i)
	case CmdRenderTarget:
		return f.RenderTarget(i)
	case CmdInputLayout:
		return f.InputLayout(i)
	case CmdVertexShader:
		return f.VertexShaderID(i)
	case CmdPixelShader:
		return f.PixelShaderID(i)
	case CmdColorMul:
		return f.ColorMul(i)
	case CmdColorAdd:
		return f.ColorAdd(i)
	case CmdCombinedTransform:
		return f.CombinedTransform(i)
	case CmdCameraTransform:
		return f.CameraTransform(i)
	case CmdEyePosition:
		return f.EyePosition(i)
	case CmdLocalTransform:
		return f.LocalTransform(i)
	case CmdUVTransform:
		return f.UVTransform(i)
	case CmdVSTexture:
		return f.VSTextureID(cmd.Slot, i)
	case CmdPSTexture:
		return f.PSTextureID(cmd.Slot, i)
	case CmdMesh:
		return f.MeshID(i)
	case CmdGlobalAmbientColor:
		return f.GlobalAmbientColor(i)
	case CmdSunDirection:
		return f.SunDirection(i)
	case CmdSunColor:
		return f.SunColor(i)
	}
	return nil
}

// target returns the length of the array cmd indexes into. ok is false for
// command types that carry no index and for unknown types.
func (f *Frame) target(cmd Command) (n int, ok bool) {
	d := &f.data
	if cmd.Type.IsPerSlot() && int(cmd.Slot) >= MaxSamplerCount {
		return 0, true
	}
	switch cmd.Type {
	case CmdUpdateBuffers, CmdUpdateLineBuffers:
		return 0, false
	case CmdDraw:
		return len(d.Draws), true
	case CmdDrawLine:
		return len(d.Lines), true
	case CmdDrawMesh:
		return len(d.MeshDraws), true
	case CmdDrawNull:
		return len(d.NullDraws), true
	case CmdSetConstantBuffer:
		return len(d.ConstantBuffers), true
	case CmdBlendState:
		return len(d.BlendStates), true
	case CmdRasterizerState:
		return len(d.RasterizerStates), true
	case CmdDepthStencilState:
		return len(d.DepthStencilStates), true
	case CmdVSSamplerState:
		return len(d.VSSamplerStates[cmd.Slot]), true
	case CmdPSSamplerState:
		return len(d.PSSamplerStates[cmd.Slot]), true
	case CmdScissorRect:
		return len(d.ScissorRects), true
	case CmdViewport:
		return len(d.Viewports), true
	case CmdSDFParams:
		return len(d.SDFParams), true
	case CmdRenderTarget:
		return len(d.RenderTargets), true
	case CmdInputLayout:
		return len(d.InputLayouts), true
	case CmdVertexShader:
		return len(d.VertexShaders), true
	case CmdPixelShader:
		return len(d.PixelShaders), true
	case CmdColorMul:
		return len(d.ColorMuls), true
	case CmdColorAdd:
		return len(d.ColorAdds), true
	case CmdCombinedTransform:
		return len(d.CombinedTransforms), true
	case CmdCameraTransform:
		return len(d.CameraTransforms), true
	case CmdEyePosition:
		return len(d.EyePositions), true
	case CmdLocalTransform:
		return len(d.LocalTransforms), true
	case CmdUVTransform:
		return len(d.UVTransforms), true
	case CmdVSTexture:
		return len(d.VSTextures[cmd.Slot]), true
	case CmdPSTexture:
		return len(d.PSTextures[cmd.Slot]), true
	case CmdMesh:
		return len(d.Meshes), true
	case CmdGlobalAmbientColor:
		return len(d.GlobalAmbientColors), true
	case CmdSunDirection:
		return len(d.SunDirections), true
	case CmdSunColor:
		return len(d.SunColors), true
	}
	return 0, true
}

// Validate checks that every command references an existing entry and
// that every constant buffer payload lies inside the constant arena.
// Frames produced by a Manager are always valid; Validate is meant for
// frames decoded from external input.
func (f *Frame) Validate() error {
	for pos, cmd := range f.data.Commands {
		n, ok := f.target(cmd)
		if !ok {
			continue
		}
		if int64(cmd.Index) >= int64(n) {
			return fmt.Errorf("%w: command %d (%v slot %d) index %d, have %d",
				ErrIndexRange, pos, cmd.Type, cmd.Slot, cmd.Index, n)
		}
	}
	for i, cb := range f.data.ConstantBuffers {
		if uint64(cb.Offset)+uint64(cb.VectorCount) > uint64(len(f.data.Constants)) {
			return fmt.Errorf("%w: constant buffer %d spans [%d,+%d), arena has %d vectors",
				ErrIndexRange, i, cb.Offset, cb.VectorCount, len(f.data.Constants))
		}
	}
	return nil
}

// Texture returns the handle reserved for id.
func (f *Frame) Texture(id TextureID) (Texture, bool) {
	if f.res == nil {
		return nil, false
	}
	return f.res.textures.Lookup(id)
}

// Mesh returns the handle reserved for id.
func (f *Frame) Mesh(id MeshID) (Mesh, bool) {
	if f.res == nil {
		return nil, false
	}
	return f.res.meshes.Lookup(id)
}

// VertexShader returns the custom vertex shader reserved for id.
// Built-in shaders are never reserved.
func (f *Frame) VertexShader(id ShaderID) (VertexShader, bool) {
	if f.res == nil {
		return nil, false
	}
	return f.res.vs.Lookup(id)
}

// PixelShader returns the custom pixel shader reserved for id.
func (f *Frame) PixelShader(id ShaderID) (PixelShader, bool) {
	if f.res == nil {
		return nil, false
	}
	return f.res.ps.Lookup(id)
}

// RenderTexture returns the render target reserved for id.
func (f *Frame) RenderTexture(id TextureID) (RenderTexture, bool) {
	if f.res == nil {
		return nil, false
	}
	return f.res.rts.Lookup(id)
}

// Playback replays the frame into b. It stops at the first error and
// reports the position of the failing command.
func (f *Frame) Playback(b Backend) error {
	if err := b.Begin(f); err != nil {
		return fmt.Errorf("drawstream: backend begin: %w", err)
	}
	for pos, cmd := range f.data.Commands {
		if err := b.Apply(f, cmd); err != nil {
			return fmt.Errorf("drawstream: command %d (%v): %w", pos, cmd.Type, err)
		}
	}
	if err := b.End(); err != nil {
		return fmt.Errorf("drawstream: backend end: %w", err)
	}
	return nil
}
