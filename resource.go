package drawstream

import "github.com/gogpu/gputypes"

// InvalidID is the sentinel identity for "no resource bound".
const InvalidID = ^uint32(0)

// TextureID identifies a texture owned by the asset manager.
type TextureID uint32

// MeshID identifies a mesh owned by the asset manager.
type MeshID uint32

// ShaderID identifies a vertex or pixel shader. Engine built-in shaders
// and custom shaders share one ID space per stage.
type ShaderID uint32

// InvalidTexture, InvalidMesh and InvalidShader are the unbound sentinels.
const (
	InvalidTexture = TextureID(InvalidID)
	InvalidMesh    = MeshID(InvalidID)
	InvalidShader  = ShaderID(InvalidID)
)

// IsValid returns true if the ID names a texture.
func (id TextureID) IsValid() bool {
	return uint32(id) != InvalidID
}

// IsValid returns true if the ID names a mesh.
func (id MeshID) IsValid() bool {
	return uint32(id) != InvalidID
}

// IsValid returns true if the ID names a shader.
func (id ShaderID) IsValid() bool {
	return uint32(id) != InvalidID
}

// Texture is a handle to an externally owned texture.
//
// A handle that also implements Retain() and Release() is retained when
// the Manager first records it in a frame and released at the next Reset.
type Texture interface {
	ID() TextureID
}

// RenderTexture is a texture that can be bound as a render target.
type RenderTexture interface {
	Texture
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat
}

// Mesh is a handle to an externally owned mesh.
type Mesh interface {
	ID() MeshID
}

// VertexShader is a handle to a custom vertex shader.
type VertexShader interface {
	ID() ShaderID
}

// PixelShader is a handle to a custom pixel shader.
type PixelShader interface {
	ID() ShaderID
}
