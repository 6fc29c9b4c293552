package drawstream

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// PushBlendState sets the blend state.
func (m *Manager) PushBlendState(s BlendState) {
	track(m, m.blend, s)
}

// PushRasterizerState sets the rasterizer state.
func (m *Manager) PushRasterizerState(s RasterizerState) {
	track(m, m.rasterizer, s)
}

// PushDepthStencilState sets the depth and stencil test state.
func (m *Manager) PushDepthStencilState(s DepthStencilState) {
	track(m, m.depthStencil, s)
}

// PushVSSamplerState sets the vertex stage sampler in slot.
// slot must be less than MaxSamplerCount.
func (m *Manager) PushVSSamplerState(slot uint32, s SamplerState) {
	track(m, m.samplers[StageVertex][slot], s)
}

// PushPSSamplerState sets the pixel stage sampler in slot.
// slot must be less than MaxSamplerCount.
func (m *Manager) PushPSSamplerState(slot uint32, s SamplerState) {
	track(m, m.samplers[StagePixel][slot], s)
}

// PushScissorRect sets the scissor rectangle.
func (m *Manager) PushScissorRect(r image.Rectangle) {
	track(m, m.scissor, r)
}

// PushViewport sets the viewport.
func (m *Manager) PushViewport(v Viewport) {
	track(m, m.viewport, v)
}

// PushSDFParams sets the signed distance field font parameters.
func (m *Manager) PushSDFParams(p SDFParams) {
	track(m, m.sdf, p)
}

// PushRenderTarget binds rt as the render target. A nil rt selects the
// scene (back buffer) target.
func (m *Manager) PushRenderTarget(rt RenderTexture) {
	if rt == nil {
		track(m, m.renderTarget, InvalidTexture)
		return
	}
	if track(m, m.renderTarget, rt.ID()) {
		m.res.rts.Reserve(rt.ID(), rt)
	}
}

// PushInputLayout sets the vertex input layout.
func (m *Manager) PushInputLayout(l InputLayout) {
	track(m, m.inputLayout, l)
}

// PushStandardVS binds the engine built-in vertex shader id.
// Built-in shaders are owned by the engine and are not reserved.
func (m *Manager) PushStandardVS(id ShaderID) {
	track(m, m.vs, id)
}

// PushCustomVS binds a user vertex shader and reserves it for the frame.
func (m *Manager) PushCustomVS(vs VertexShader) {
	if track(m, m.vs, vs.ID()) {
		m.res.vs.Reserve(vs.ID(), vs)
	}
}

// PushStandardPS binds the engine built-in pixel shader id.
func (m *Manager) PushStandardPS(id ShaderID) {
	track(m, m.ps, id)
}

// PushCustomPS binds a user pixel shader and reserves it for the frame.
func (m *Manager) PushCustomPS(ps PixelShader) {
	if track(m, m.ps, ps.ID()) {
		m.res.ps.Reserve(ps.ID(), ps)
	}
}

// PushColorMul sets the multiplicative vertex color.
func (m *Manager) PushColorMul(c mgl32.Vec4) {
	track(m, m.colorMul, c)
}

// PushColorAdd sets the additive vertex color.
func (m *Manager) PushColorAdd(c mgl32.Vec4) {
	track(m, m.colorAdd, c)
}

// PushCombinedTransform sets the 2D combined (local * camera) transform.
func (m *Manager) PushCombinedTransform(t mgl32.Mat4) {
	track(m, m.combined, t)
}

// PushCameraTransform sets the 3D view-projection transform.
func (m *Manager) PushCameraTransform(t mgl32.Mat4) {
	track(m, m.camera, t)
}

// PushEyePosition sets the 3D camera position.
func (m *Manager) PushEyePosition(p mgl32.Vec3) {
	track(m, m.eye, p)
}

// PushLocalTransform sets the 3D model transform.
func (m *Manager) PushLocalTransform(t mgl32.Mat4) {
	track(m, m.local, t)
}

// PushUVTransform sets the texture coordinate scale (XY) and offset (ZW).
func (m *Manager) PushUVTransform(t mgl32.Vec4) {
	track(m, m.uv, t)
}

// PushVSTexture binds tex to vertex stage slot. A nil tex unbinds the slot.
func (m *Manager) PushVSTexture(slot uint32, tex Texture) {
	m.pushTexture(StageVertex, slot, tex)
}

// PushVSTextureUnbind unbinds vertex stage slot.
func (m *Manager) PushVSTextureUnbind(slot uint32) {
	track(m, m.textures[StageVertex][slot], InvalidTexture)
}

// PushPSTexture binds tex to pixel stage slot. A nil tex unbinds the slot.
func (m *Manager) PushPSTexture(slot uint32, tex Texture) {
	m.pushTexture(StagePixel, slot, tex)
}

// PushPSTextureUnbind unbinds pixel stage slot.
func (m *Manager) PushPSTextureUnbind(slot uint32) {
	track(m, m.textures[StagePixel][slot], InvalidTexture)
}

func (m *Manager) pushTexture(stage ShaderStage, slot uint32, tex Texture) {
	ch := m.textures[stage][slot]
	if tex == nil {
		track(m, ch, InvalidTexture)
		return
	}
	if track(m, ch, tex.ID()) {
		m.res.textures.Reserve(tex.ID(), tex)
	}
}

// PushMesh binds mesh for following PushDrawMesh calls.
func (m *Manager) PushMesh(mesh Mesh) {
	if mesh == nil {
		m.PushMeshUnbind()
		return
	}
	if track(m, m.mesh, mesh.ID()) {
		m.res.meshes.Reserve(mesh.ID(), mesh)
	}
}

// PushMeshUnbind unbinds the current mesh.
func (m *Manager) PushMeshUnbind() {
	track(m, m.mesh, InvalidMesh)
}

// PushGlobalAmbientColor sets the 3D ambient light color.
func (m *Manager) PushGlobalAmbientColor(c mgl32.Vec3) {
	track(m, m.ambient, c)
}

// PushSunDirection sets the direction of the 3D directional light.
func (m *Manager) PushSunDirection(d mgl32.Vec3) {
	track(m, m.sunDirection, d)
}

// PushSunColor sets the color of the 3D directional light.
func (m *Manager) PushSunColor(c mgl32.Vec3) {
	track(m, m.sunColor, c)
}

// Current values. These include pending changes that have not been
// flushed yet.

func (m *Manager) CurrentBlendState() BlendState               { return m.blend.Current() }
func (m *Manager) CurrentRasterizerState() RasterizerState     { return m.rasterizer.Current() }
func (m *Manager) CurrentDepthStencilState() DepthStencilState { return m.depthStencil.Current() }
func (m *Manager) CurrentScissorRect() image.Rectangle         { return m.scissor.Current() }
func (m *Manager) CurrentViewport() Viewport                   { return m.viewport.Current() }
func (m *Manager) CurrentSDFParams() SDFParams                 { return m.sdf.Current() }
func (m *Manager) CurrentRenderTarget() TextureID              { return m.renderTarget.Current() }
func (m *Manager) CurrentInputLayout() InputLayout             { return m.inputLayout.Current() }
func (m *Manager) CurrentVS() ShaderID                         { return m.vs.Current() }
func (m *Manager) CurrentPS() ShaderID                         { return m.ps.Current() }
func (m *Manager) CurrentColorMul() mgl32.Vec4                 { return m.colorMul.Current() }
func (m *Manager) CurrentColorAdd() mgl32.Vec4                 { return m.colorAdd.Current() }
func (m *Manager) CurrentCombinedTransform() mgl32.Mat4        { return m.combined.Current() }
func (m *Manager) CurrentCameraTransform() mgl32.Mat4          { return m.camera.Current() }
func (m *Manager) CurrentEyePosition() mgl32.Vec3              { return m.eye.Current() }
func (m *Manager) CurrentLocalTransform() mgl32.Mat4           { return m.local.Current() }
func (m *Manager) CurrentUVTransform() mgl32.Vec4              { return m.uv.Current() }
func (m *Manager) CurrentMesh() MeshID                         { return m.mesh.Current() }
func (m *Manager) CurrentGlobalAmbientColor() mgl32.Vec3       { return m.ambient.Current() }
func (m *Manager) CurrentSunDirection() mgl32.Vec3             { return m.sunDirection.Current() }
func (m *Manager) CurrentSunColor() mgl32.Vec3                 { return m.sunColor.Current() }

// CurrentVSSamplerState returns the vertex stage sampler in slot.
func (m *Manager) CurrentVSSamplerState(slot uint32) SamplerState {
	return m.samplers[StageVertex][slot].Current()
}

// CurrentPSSamplerState returns the pixel stage sampler in slot.
func (m *Manager) CurrentPSSamplerState(slot uint32) SamplerState {
	return m.samplers[StagePixel][slot].Current()
}

// CurrentVSTexture returns the texture bound to vertex stage slot.
func (m *Manager) CurrentVSTexture(slot uint32) TextureID {
	return m.textures[StageVertex][slot].Current()
}

// CurrentPSTexture returns the texture bound to pixel stage slot.
func (m *Manager) CurrentPSTexture(slot uint32) TextureID {
	return m.textures[StagePixel][slot].Current()
}
