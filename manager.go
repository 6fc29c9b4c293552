package drawstream

import (
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/drawstream/internal/arena"
	"github.com/gogpu/drawstream/internal/reserve"
	"github.com/gogpu/drawstream/internal/statechan"
)

// committer is the type-erased view of a state channel used by Flush and
// Reset. Every *statechan.Channel[T] satisfies it.
type committer interface {
	Dirty() bool
	Commit() uint32
	Rebase()
}

// binding ties a channel to the command type and slot it emits.
type binding struct {
	typ  CommandType
	slot uint8
	ch   committer
}

// BaselineLen is the number of records Reset seeds every frame with: the
// two buffer upload markers and one record per channel. 21 channels have
// a single instance and four kinds have one channel per slot.
const BaselineLen = 2 + 21 + 4*MaxSamplerCount

// Stats holds per-frame recording counters.
type Stats struct {
	// Commands is the number of records in the command stream.
	Commands int
	// Draws counts triangle, line, mesh and null draw records.
	Draws int
	// ConstantBuffers counts SetConstantBuffer records.
	ConstantBuffers int
	// Redundant counts state pushes that matched the current value.
	Redundant int
	// Cancelled counts pushes that reverted a pending change.
	Cancelled int
	// Coalesced counts pushes that replaced a pending change.
	Coalesced int
	// Flushes counts Flush calls that emitted at least one record.
	Flushes int
}

// Manager records one frame of draw and state operations and produces a
// compact command stream.
//
// State pushes are diffed against the last committed value of their
// channel, so redundant or reverted pushes cost nothing. Consecutive draws
// under the same state merge into one batch. A Manager is not safe for
// concurrent use; record a frame on one goroutine and replay it after
// Finish.
type Manager struct {
	defaults Defaults

	blend        *statechan.Channel[BlendState]
	rasterizer   *statechan.Channel[RasterizerState]
	depthStencil *statechan.Channel[DepthStencilState]
	samplers     [stageCount][MaxSamplerCount]*statechan.Channel[SamplerState]
	scissor      *statechan.Channel[image.Rectangle]
	viewport     *statechan.Channel[Viewport]
	sdf          *statechan.Channel[SDFParams]
	renderTarget *statechan.Channel[TextureID]
	inputLayout  *statechan.Channel[InputLayout]
	vs           *statechan.Channel[ShaderID]
	ps           *statechan.Channel[ShaderID]
	colorMul     *statechan.Channel[mgl32.Vec4]
	colorAdd     *statechan.Channel[mgl32.Vec4]
	combined     *statechan.Channel[mgl32.Mat4]
	camera       *statechan.Channel[mgl32.Mat4]
	eye          *statechan.Channel[mgl32.Vec3]
	local        *statechan.Channel[mgl32.Mat4]
	uv           *statechan.Channel[mgl32.Vec4]
	textures     [stageCount][MaxSamplerCount]*statechan.Channel[TextureID]
	mesh         *statechan.Channel[MeshID]
	ambient      *statechan.Channel[mgl32.Vec3]
	sunDirection *statechan.Channel[mgl32.Vec3]
	sunColor     *statechan.Channel[mgl32.Vec3]

	// bindings lists every channel in flush and baseline order.
	bindings []binding

	// pending is the number of dirty channels.
	pending   int
	cbPending bool

	commands  []Command
	draws     []DrawBatch
	lines     []LineBatch
	meshDraws []MeshDraw
	nullDraws []uint32

	currentDraw DrawBatch
	currentLine LineBatch
	drawOffset  uint32

	constants *arena.Arena
	cbs       []ConstantBufferCommand

	res resources

	frame Frame
	stats Stats
	reset bool
}

// NewManager creates a Manager and starts its first frame.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := o.defaults

	m := &Manager{
		defaults:     d,
		blend:        statechan.New(d.Blend),
		rasterizer:   statechan.New(d.Rasterizer),
		depthStencil: statechan.New(d.DepthStencil),
		scissor:      statechan.New(d.Scissor),
		viewport:     statechan.New(d.Viewport),
		sdf:          statechan.New(d.SDF),
		renderTarget: statechan.New(InvalidTexture),
		inputLayout:  statechan.New(d.InputLayout),
		vs:           statechan.NewWithSentinel(InvalidShader, InvalidShader),
		ps:           statechan.NewWithSentinel(InvalidShader, InvalidShader),
		colorMul:     statechan.New(d.ColorMul),
		colorAdd:     statechan.New(d.ColorAdd),
		combined:     statechan.New(d.CombinedTransform),
		camera:       statechan.New(d.CameraTransform),
		eye:          statechan.New(d.EyePosition),
		local:        statechan.New(d.LocalTransform),
		uv:           statechan.New(d.UVTransform),
		mesh:         statechan.NewWithSentinel(InvalidMesh, InvalidMesh),
		ambient:      statechan.New(d.GlobalAmbientColor),
		sunDirection: statechan.New(d.SunDirection),
		sunColor:     statechan.New(d.SunColor),

		commands:  make([]Command, 0, o.commandCapacity),
		draws:     make([]DrawBatch, 0, o.drawCapacity),
		lines:     make([]LineBatch, 0, o.drawCapacity),
		meshDraws: make([]MeshDraw, 0, o.drawCapacity),
		constants: arena.New(o.constantCapacity),

		res: resources{
			textures: reserve.New[TextureID, Texture](),
			meshes:   reserve.New[MeshID, Mesh](),
			vs:       reserve.New[ShaderID, VertexShader](),
			ps:       reserve.New[ShaderID, PixelShader](),
			rts:      reserve.New[TextureID, RenderTexture](),
		},
	}
	for s := range m.samplers {
		for i := range m.samplers[s] {
			m.samplers[s][i] = statechan.New(d.Sampler)
			m.textures[s][i] = statechan.NewWithSentinel(InvalidTexture, InvalidTexture)
		}
	}
	m.frame.res = &m.res
	m.bindings = m.declareBindings()
	m.Reset()
	return m
}

// Defaults returns the baseline values the Manager was created with.
func (m *Manager) Defaults() Defaults {
	return m.defaults
}

// declareBindings returns the channel table in declared order.
func (m *Manager) declareBindings() []binding {
	b := make([]binding, 0, 32+4*MaxSamplerCount)
	add := func(typ CommandType, slot int, ch committer) {
		b = append(b, binding{typ: typ, slot: uint8(slot), ch: ch})
	}

	add(CmdBlendState, 0, m.blend)
	add(CmdRasterizerState, 0, m.rasterizer)
	add(CmdDepthStencilState, 0, m.depthStencil)
	for i, ch := range m.samplers[StageVertex] {
		add(CmdVSSamplerState, i, ch)
	}
	for i, ch := range m.samplers[StagePixel] {
		add(CmdPSSamplerState, i, ch)
	}
	add(CmdScissorRect, 0, m.scissor)
	add(CmdViewport, 0, m.viewport)
	add(CmdSDFParams, 0, m.sdf)
	add(CmdRenderTarget, 0, m.renderTarget)
	add(CmdInputLayout, 0, m.inputLayout)
	add(CmdVertexShader, 0, m.vs)
	add(CmdPixelShader, 0, m.ps)
	add(CmdColorMul, 0, m.colorMul)
	add(CmdColorAdd, 0, m.colorAdd)
	add(CmdCombinedTransform, 0, m.combined)
	add(CmdCameraTransform, 0, m.camera)
	add(CmdEyePosition, 0, m.eye)
	add(CmdLocalTransform, 0, m.local)
	add(CmdUVTransform, 0, m.uv)
	for i, ch := range m.textures[StageVertex] {
		add(CmdVSTexture, i, ch)
	}
	for i, ch := range m.textures[StagePixel] {
		add(CmdPSTexture, i, ch)
	}
	add(CmdMesh, 0, m.mesh)
	add(CmdGlobalAmbientColor, 0, m.ambient)
	add(CmdSunDirection, 0, m.sunDirection)
	add(CmdSunColor, 0, m.sunColor)
	return b
}

// Reset ends the current frame and starts a new one.
//
// The command stream, draw arrays, constant arena and reservation tables
// are cleared. Every channel is rebased to a single history entry: the
// last committed value for carry-forward channels, the unbound sentinel
// for shader, texture and mesh bindings. One baseline record per channel
// is then emitted so a backend can rebuild the full pipeline state from
// the new stream alone.
//
// Any Frame returned by Finish becomes invalid.
func (m *Manager) Reset() {
	if m.reset {
		Logger().Debug("drawstream: frame recorded",
			slog.Int("commands", len(m.commands)),
			slog.Int("draws", m.drawCount()),
			slog.Int("constant_buffers", len(m.cbs)),
			slog.Int("redundant", m.stats.Redundant),
			slog.Int("cancelled", m.stats.Cancelled),
			slog.Int("coalesced", m.stats.Coalesced))
	}
	m.reset = true

	m.commands = m.commands[:0]
	m.draws = m.draws[:0]
	m.lines = m.lines[:0]
	m.meshDraws = m.meshDraws[:0]
	m.nullDraws = m.nullDraws[:0]
	m.currentDraw = DrawBatch{}
	m.currentLine = LineBatch{}
	m.drawOffset = 0
	m.constants.Reset()
	m.cbs = m.cbs[:0]
	m.pending = 0
	m.cbPending = false
	m.stats = Stats{}

	m.res.textures.Clear()
	m.res.meshes.Clear()
	m.res.vs.Clear()
	m.res.ps.Clear()
	// The render target carries forward, so its reservation is kept
	// without a release in between.
	m.res.rts.ClearExcept(m.renderTarget.Committed())

	m.commands = append(m.commands,
		Command{Type: CmdUpdateBuffers},
		Command{Type: CmdUpdateLineBuffers},
	)
	for _, b := range m.bindings {
		b.ch.Rebase()
		m.commands = append(m.commands, Command{Type: b.typ, Slot: b.slot})
	}
}

// Flush closes the in-flight draw batches and emits every pending state
// change. Draw and line batches come first so they are recorded under the
// state that was in effect when they were submitted. A pending constant
// buffer follows, then dirty channels in declared order.
//
// Flush is idempotent when nothing is pending.
func (m *Manager) Flush() {
	before := len(m.commands)
	m.closeBatches()

	if m.cbPending {
		if len(m.cbs) == 0 {
			panic("drawstream: SetConstantBuffer pending with an empty constant buffer table")
		}
		m.commands = append(m.commands, Command{
			Type:  CmdSetConstantBuffer,
			Index: uint32(len(m.cbs) - 1),
		})
		m.cbPending = false
	}

	if m.pending > 0 {
		for _, b := range m.bindings {
			if b.ch.Dirty() {
				m.commands = append(m.commands, Command{Type: b.typ, Slot: b.slot, Index: b.ch.Commit()})
			}
		}
		m.pending = 0
	}

	if len(m.commands) > before {
		m.stats.Flushes++
	}
}

// closeBatches appends the pending triangle and line batches, if any.
func (m *Manager) closeBatches() {
	if m.currentDraw.IndexCount > 0 {
		m.commands = append(m.commands, Command{Type: CmdDraw, Index: uint32(len(m.draws))})
		m.draws = append(m.draws, m.currentDraw)
		m.drawOffset += m.currentDraw.IndexCount
		m.currentDraw = DrawBatch{}
	}
	if m.currentLine.IndexCount > 0 {
		m.commands = append(m.commands, Command{Type: CmdDrawLine, Index: uint32(len(m.lines))})
		m.lines = append(m.lines, m.currentLine)
		m.currentLine = LineBatch{}
	}
}

// Finish flushes pending work and returns the recorded frame. The frame
// stays valid until the next Reset. Calling Finish again after more pushes
// updates the same Frame in place.
func (m *Manager) Finish() *Frame {
	m.Flush()

	d := &m.frame.data
	d.Commands = m.commands
	d.Draws = m.draws
	d.Lines = m.lines
	d.MeshDraws = m.meshDraws
	d.NullDraws = m.nullDraws
	d.ConstantBuffers = m.cbs
	d.Constants = m.constants.Vectors()

	d.BlendStates = m.blend.History()
	d.RasterizerStates = m.rasterizer.History()
	d.DepthStencilStates = m.depthStencil.History()
	for i := range MaxSamplerCount {
		d.VSSamplerStates[i] = m.samplers[StageVertex][i].History()
		d.PSSamplerStates[i] = m.samplers[StagePixel][i].History()
		d.VSTextures[i] = m.textures[StageVertex][i].History()
		d.PSTextures[i] = m.textures[StagePixel][i].History()
	}
	d.ScissorRects = m.scissor.History()
	d.Viewports = m.viewport.History()
	d.SDFParams = m.sdf.History()
	d.RenderTargets = m.renderTarget.History()
	d.InputLayouts = m.inputLayout.History()
	d.VertexShaders = m.vs.History()
	d.PixelShaders = m.ps.History()
	d.ColorMuls = m.colorMul.History()
	d.ColorAdds = m.colorAdd.History()
	d.CombinedTransforms = m.combined.History()
	d.CameraTransforms = m.camera.History()
	d.EyePositions = m.eye.History()
	d.LocalTransforms = m.local.History()
	d.UVTransforms = m.uv.History()
	d.Meshes = m.mesh.History()
	d.GlobalAmbientColors = m.ambient.History()
	d.SunDirections = m.sunDirection.History()
	d.SunColors = m.sunColor.History()
	return &m.frame
}

// HasStateChange reports whether any channel or constant buffer is
// waiting to be emitted.
func (m *Manager) HasStateChange() bool {
	return m.pending > 0 || m.cbPending
}

// HasDraw reports whether the frame submits any primitives, including
// batches that have not been flushed yet.
func (m *Manager) HasDraw() bool {
	return m.drawCount() > 0 || m.currentDraw.IndexCount > 0 || m.currentLine.IndexCount > 0
}

func (m *Manager) drawCount() int {
	return len(m.draws) + len(m.lines) + len(m.meshDraws) + len(m.nullDraws)
}

// Stats returns the counters of the frame recorded so far.
func (m *Manager) Stats() Stats {
	s := m.stats
	s.Commands = len(m.commands)
	s.Draws = m.drawCount()
	s.ConstantBuffers = len(m.cbs)
	return s
}

// PushDraw adds indexCount triangle indices to the current batch. Pending
// state changes close the batch first.
func (m *Manager) PushDraw(indexCount uint32) {
	if m.HasStateChange() {
		m.Flush()
	}
	if m.currentDraw.IndexCount == 0 {
		m.currentDraw = DrawBatch{StartIndex: m.drawOffset, InstanceCount: 1}
	}
	m.currentDraw.IndexCount += indexCount
}

// PushDrawLine adds indexCount line-list indices to the current line batch.
func (m *Manager) PushDrawLine(indexCount uint32) {
	if m.HasStateChange() {
		m.Flush()
	}
	m.currentLine.IndexCount += indexCount
}

// PushDrawMesh records one draw of the bound mesh with its own material.
// instanceCount must be at least 1.
func (m *Manager) PushDrawMesh(startIndex, indexCount, instanceCount uint32, mat Material) {
	if instanceCount == 0 {
		panic("drawstream: PushDrawMesh instanceCount is zero")
	}
	m.closeForDirectDraw()
	m.commands = append(m.commands, Command{Type: CmdDrawMesh, Index: uint32(len(m.meshDraws))})
	m.meshDraws = append(m.meshDraws, MeshDraw{
		DrawBatch: DrawBatch{StartIndex: startIndex, IndexCount: indexCount, InstanceCount: instanceCount},
		Material:  mat,
	})
}

// PushNullVertices records a draw of count vertices with no vertex buffer
// bound. The shader generates positions from the vertex index.
func (m *Manager) PushNullVertices(count uint32) {
	m.closeForDirectDraw()
	m.commands = append(m.commands, Command{Type: CmdDrawNull, Index: uint32(len(m.nullDraws))})
	m.nullDraws = append(m.nullDraws, count)
}

// closeForDirectDraw prepares the stream for a draw that bypasses the
// accumulators. Earlier batches must stay ahead of it.
func (m *Manager) closeForDirectDraw() {
	if m.HasStateChange() {
		m.Flush()
		return
	}
	m.closeBatches()
}

// PushUpdateBuffers marks the upload of triangle vertex batch number
// batch. Index offsets of following draws restart at zero.
func (m *Manager) PushUpdateBuffers(batch uint32) {
	m.Flush()
	m.commands = append(m.commands, Command{Type: CmdUpdateBuffers, Index: batch})
	m.drawOffset = 0
}

// PushUpdateLineBuffers marks the upload of line vertex batch number batch.
func (m *Manager) PushUpdateLineBuffers(batch uint32) {
	m.Flush()
	m.commands = append(m.commands, Command{Type: CmdUpdateLineBuffers, Index: batch})
}

// PushConstantBuffer uploads data to constant buffer slot of stage.
// Constant buffers are never diffed: every call produces one record.
func (m *Manager) PushConstantBuffer(stage ShaderStage, slot uint32, data []f32.Vec4) {
	m.Flush()
	off := m.constants.Append(data)
	m.pushConstants(stage, slot, off, uint32(len(data)))
}

// PushConstantFloats is like PushConstantBuffer for raw float lanes.
// raw is packed four floats per vector and zero padded to vectorCount
// vectors.
func (m *Manager) PushConstantFloats(stage ShaderStage, slot uint32, raw []float32, vectorCount uint32) {
	m.Flush()
	off := m.constants.AppendFloats(raw, vectorCount)
	m.pushConstants(stage, slot, off, vectorCount)
}

func (m *Manager) pushConstants(stage ShaderStage, slot, off, n uint32) {
	m.cbs = append(m.cbs, ConstantBufferCommand{
		Stage:       stage,
		Slot:        slot,
		Offset:      off,
		VectorCount: n,
	})
	m.cbPending = true
}

// track pushes v into ch and maintains the pending count. It reports
// whether the push moved the channel to a new value.
func track[T comparable](m *Manager, ch *statechan.Channel[T], v T) bool {
	t := ch.Push(v)
	switch t {
	case statechan.Unchanged:
		m.stats.Redundant++
	case statechan.Dirtied:
		m.pending++
	case statechan.Cancelled:
		m.pending--
		m.stats.Cancelled++
	case statechan.Coalesced:
		m.stats.Coalesced++
	}
	return t.Changed()
}
