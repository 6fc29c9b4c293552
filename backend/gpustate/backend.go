// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpustate replays drawstream frames the way a WebGPU render pass
// consumes them.
//
// The backend keeps the bound state of the pass, folds fixed-function
// channels into a PipelineKey and emits the native calls a real device
// would receive. Nothing is submitted to a GPU: the result is an ordered
// []Call that tests and tools can inspect.
//
// State is applied lazily. Channel records only update the tracked state;
// calls are emitted when a draw needs them. A pipeline switch to the
// pipeline that is already bound is elided.
//
//	import _ "github.com/gogpu/drawstream/backend/gpustate"
//
//	b := drawstream.MustBackend("gpustate").(*gpustate.Backend)
//	if err := frame.Playback(b); err != nil {
//	    return err
//	}
//	for _, c := range b.Calls() {
//	    fmt.Println(c)
//	}
package gpustate

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/drawstream"
	"github.com/gogpu/drawstream/internal/lru"
)

func init() {
	drawstream.Register("gpustate", func() drawstream.Backend {
		return New(nil)
	})
}

// ErrNoMesh is returned when a mesh draw is replayed without a bound mesh.
var ErrNoMesh = errors.New("gpustate: mesh draw without a bound mesh")

// Uniform block sizes in bytes.
const (
	// Combined, camera and local transforms plus color multiplier, UV
	// transform and eye position.
	vsUniformBytes = 3*64 + 3*16
	// Color addend, SDF parameters and the three lighting vectors.
	psUniformBytes = 16 + 3*16 + 3*16
	// Phong material, one vec4 per term.
	materialBytes = 5 * 16
)

// materialSlot is the pixel stage buffer slot that holds the mesh material.
const materialSlot = 1

// Vertex buffer slots.
const (
	triangleBuffer uint32 = iota
	lineBuffer
)

// Stats counts the work of the last replayed frame.
type Stats struct {
	Calls            int
	Draws            int
	PipelineSwitches int
	ElidedSwitches   int
	Uploads          int
	RenderPasses     int

	// PipelinesCreated counts pipeline cache misses in this frame.
	PipelinesCreated int
	// Pipelines is the number of pipelines held in the cache.
	Pipelines int
}

// DefaultPipelineCacheSize is the pipeline cache capacity used by New.
const DefaultPipelineCacheSize = 64

// Option configures a Backend.
type Option func(*Backend)

// WithPipelineCacheSize bounds the number of cached pipelines. Evicted
// pipelines are created again when a draw needs them.
func WithPipelineCacheSize(n int) Option {
	return func(b *Backend) {
		b.pipelines = lru.New[uint64, PipelineKey](n)
	}
}

// Backend replays frames into a list of WebGPU calls.
type Backend struct {
	provider gpucontext.DeviceProvider
	log      *slog.Logger

	calls []Call
	stats Stats

	// pipelines persists across frames like a device pipeline cache.
	pipelines *lru.Cache[uint64, PipelineKey]

	s state
}

// state is the bound state of one replay.
type state struct {
	key PipelineKey

	target     drawstream.TextureID
	passOpen   bool
	passTarget drawstream.TextureID

	pipeline    uint64
	hasPipeline bool

	scissor       image.Rectangle
	viewport      drawstream.Viewport
	scissorDirty  bool
	viewportDirty bool

	samplers [2][drawstream.MaxSamplerCount]drawstream.SamplerState
	textures [2][drawstream.MaxSamplerCount]drawstream.TextureID
	mesh     drawstream.MeshID

	uniformsDirty  [2]bool
	uniformGroup   bool
	resourcesDirty [2]bool
}

var (
	_ drawstream.Backend       = (*Backend)(nil)
	_ drawstream.WriterBackend = (*Backend)(nil)
)

// New creates a backend that takes the back buffer format from provider.
// A nil provider is replaced by NullDevice.
func New(provider gpucontext.DeviceProvider, opts ...Option) *Backend {
	if provider == nil {
		provider = NullDevice{}
	}
	b := &Backend{
		provider:  provider,
		log:       drawstream.Logger(),
		pipelines: lru.New[uint64, PipelineKey](DefaultPipelineCacheSize),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Calls returns the calls of the last replayed frame.
func (b *Backend) Calls() []Call { return b.calls }

// Stats returns the counters of the last replayed frame.
func (b *Backend) Stats() Stats { return b.stats }

// Pipeline returns the key a cached pipeline id was created from.
func (b *Backend) Pipeline(id uint64) (PipelineKey, bool) {
	return b.pipelines.Peek(id)
}

// CacheStats are the cumulative pipeline cache counters.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// CacheStats returns the pipeline cache counters since construction.
func (b *Backend) CacheStats() CacheStats {
	st := b.pipelines.Stats()
	return CacheStats{Hits: st.Hits, Misses: st.Misses, Evictions: st.Evictions}
}

// BoundTexture returns the texture bound to stage slot.
func (b *Backend) BoundTexture(stage drawstream.ShaderStage, slot uint8) drawstream.TextureID {
	return b.s.textures[stage][slot]
}

// BoundSampler returns the sampler bound to stage slot.
func (b *Backend) BoundSampler(stage drawstream.ShaderStage, slot uint8) drawstream.SamplerState {
	return b.s.samplers[stage][slot]
}

// Begin clears the call list and resets the bound state.
func (b *Backend) Begin(f *drawstream.Frame) error {
	b.log = drawstream.Logger()
	b.calls = b.calls[:0]
	b.stats = Stats{Pipelines: b.pipelines.Len()}
	b.s = state{
		target: drawstream.InvalidTexture,
		mesh:   drawstream.InvalidMesh,
	}
	b.s.key.VertexShader = drawstream.InvalidShader
	b.s.key.PixelShader = drawstream.InvalidShader
	b.s.key.ColorFormat = b.provider.SurfaceFormat()
	for stage := range b.s.textures {
		for slot := range b.s.textures[stage] {
			b.s.textures[stage][slot] = drawstream.InvalidTexture
		}
	}
	return nil
}

// Apply folds cmd into the bound state and emits the calls of draws.
func (b *Backend) Apply(f *drawstream.Frame, cmd drawstream.Command) error {
	s := &b.s
	i := cmd.Index
	switch cmd.Type {
	case drawstream.CmdNull:
	case drawstream.CmdUpdateBuffers:
		b.emit(Call{Op: OpSetVertexBuffer, Slot: triangleBuffer, Batch: i})
	case drawstream.CmdUpdateLineBuffers:
		b.emit(Call{Op: OpSetVertexBuffer, Slot: lineBuffer, Batch: i})

	case drawstream.CmdDraw:
		d := f.Draw(i)
		b.prepare(gputypes.PrimitiveTopologyTriangleList)
		b.draw(Call{Op: OpDrawIndexed, First: d.StartIndex, Count: d.IndexCount, Instances: d.InstanceCount})
	case drawstream.CmdDrawLine:
		l := f.Line(i)
		b.prepare(gputypes.PrimitiveTopologyLineList)
		b.draw(Call{Op: OpDrawIndexed, Count: l.IndexCount, Instances: 1})
	case drawstream.CmdDrawMesh:
		if !s.mesh.IsValid() {
			return ErrNoMesh
		}
		d := f.MeshDraw(i)
		b.prepare(gputypes.PrimitiveTopologyTriangleList)
		b.upload(drawstream.StagePixel, materialSlot, materialBytes)
		b.draw(Call{Op: OpDrawIndexed, First: d.StartIndex, Count: d.IndexCount, Instances: d.InstanceCount})
	case drawstream.CmdDrawNull:
		b.prepare(gputypes.PrimitiveTopologyTriangleList)
		b.draw(Call{Op: OpDraw, Count: f.NullDraw(i), Instances: 1})
	case drawstream.CmdSetConstantBuffer:
		cb := f.ConstantBuffer(i)
		b.upload(cb.Stage, cb.Slot, int(cb.VectorCount)*16)
		s.uniformGroup = true

	case drawstream.CmdBlendState:
		s.key.Blend = f.BlendState(i)
	case drawstream.CmdRasterizerState:
		r := f.RasterizerState(i)
		if r.ScissorEnable != s.key.Rasterizer.ScissorEnable {
			s.scissorDirty = true
		}
		s.key.Rasterizer = r
	case drawstream.CmdDepthStencilState:
		s.key.DepthStencil = f.DepthStencilState(i)
	case drawstream.CmdVSSamplerState:
		s.samplers[drawstream.StageVertex][cmd.Slot] = f.VSSamplerState(cmd.Slot, i)
		s.resourcesDirty[drawstream.StageVertex] = true
	case drawstream.CmdPSSamplerState:
		s.samplers[drawstream.StagePixel][cmd.Slot] = f.PSSamplerState(cmd.Slot, i)
		s.resourcesDirty[drawstream.StagePixel] = true
	case drawstream.CmdScissorRect:
		s.scissor = f.ScissorRect(i)
		s.scissorDirty = true
	case drawstream.CmdViewport:
		s.viewport = f.Viewport(i)
		s.viewportDirty = true
	case drawstream.CmdRenderTarget:
		s.target = f.RenderTarget(i)
		s.key.ColorFormat = b.targetFormat(f, s.target)
	case drawstream.CmdInputLayout:
		s.key.Layout = f.InputLayout(i)
	case drawstream.CmdVertexShader:
		s.key.VertexShader = f.VertexShaderID(i)
	case drawstream.CmdPixelShader:
		s.key.PixelShader = f.PixelShaderID(i)

	case drawstream.CmdColorMul, drawstream.CmdCombinedTransform, drawstream.CmdCameraTransform,
		drawstream.CmdEyePosition, drawstream.CmdLocalTransform, drawstream.CmdUVTransform:
		s.uniformsDirty[drawstream.StageVertex] = true
	case drawstream.CmdColorAdd, drawstream.CmdSDFParams, drawstream.CmdGlobalAmbientColor,
		drawstream.CmdSunDirection, drawstream.CmdSunColor:
		s.uniformsDirty[drawstream.StagePixel] = true

	case drawstream.CmdVSTexture:
		b.bindTexture(f, drawstream.StageVertex, cmd.Slot, f.VSTextureID(cmd.Slot, i))
	case drawstream.CmdPSTexture:
		b.bindTexture(f, drawstream.StagePixel, cmd.Slot, f.PSTextureID(cmd.Slot, i))
	case drawstream.CmdMesh:
		s.mesh = f.MeshID(i)
		if s.mesh.IsValid() {
			if _, ok := f.Mesh(s.mesh); !ok {
				b.log.Warn("gpustate: unresolved mesh", slog.Uint64("id", uint64(s.mesh)))
			}
		}

	default:
		b.log.Warn("gpustate: ignoring unsupported command", slog.Int("type", int(cmd.Type)))
	}
	return nil
}

// End logs the frame counters.
func (b *Backend) End() error {
	b.stats.Pipelines = b.pipelines.Len()
	b.log.Debug("gpustate: frame replayed",
		slog.Int("calls", b.stats.Calls),
		slog.Int("draws", b.stats.Draws),
		slog.Int("pipeline_switches", b.stats.PipelineSwitches),
		slog.Int("elided_switches", b.stats.ElidedSwitches),
		slog.Int("pipelines_created", b.stats.PipelinesCreated),
		slog.Float64("cache_hit_rate", b.pipelines.Stats().HitRate()))
	return nil
}

// WriteTo writes one call per line to w.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, c := range b.calls {
		n, err := fmt.Fprintln(w, c)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (b *Backend) bindTexture(f *drawstream.Frame, stage drawstream.ShaderStage, slot uint8, id drawstream.TextureID) {
	b.s.textures[stage][slot] = id
	b.s.resourcesDirty[stage] = true
	if !id.IsValid() {
		return
	}
	if _, ok := f.Texture(id); !ok {
		b.log.Warn("gpustate: unresolved texture",
			slog.String("stage", stage.String()),
			slog.Int("slot", int(slot)),
			slog.Uint64("id", uint64(id)))
	}
}

// targetFormat returns the color format of render target id. The scene
// and unresolved targets use the surface format.
func (b *Backend) targetFormat(f *drawstream.Frame, id drawstream.TextureID) gputypes.TextureFormat {
	if !id.IsValid() {
		return b.provider.SurfaceFormat()
	}
	rt, ok := f.RenderTexture(id)
	if !ok {
		b.log.Warn("gpustate: unresolved render target", slog.Uint64("id", uint64(id)))
		return b.provider.SurfaceFormat()
	}
	return rt.Format()
}

// prepare emits the calls that bring the pass up to date before a draw.
func (b *Backend) prepare(topology gputypes.PrimitiveTopology) {
	s := &b.s

	if !s.passOpen || s.passTarget != s.target {
		b.emit(Call{Op: OpBeginRenderPass, Target: s.target})
		b.stats.RenderPasses++
		s.passOpen = true
		s.passTarget = s.target
		// A new pass starts with nothing bound.
		s.hasPipeline = false
		s.scissorDirty = true
		s.viewportDirty = true
		s.uniformGroup = true
		s.resourcesDirty = [2]bool{true, true}
	}

	s.key.Topology = topology
	id := s.key.Hash()
	if s.hasPipeline && id == s.pipeline {
		b.stats.ElidedSwitches++
	} else {
		key := s.key
		if _, created := b.pipelines.GetOrCreate(id, func() PipelineKey { return key }); created {
			b.stats.PipelinesCreated++
			b.log.Debug("gpustate: pipeline created",
				slog.Uint64("id", id),
				slog.String("layout", key.Layout.String()))
		}
		b.emit(Call{Op: OpSetPipeline, Pipeline: id})
		b.stats.PipelineSwitches++
		s.pipeline = id
		s.hasPipeline = true
	}

	if s.viewportDirty {
		var r image.Rectangle
		if s.viewport.Enabled {
			r = s.viewport.Rect
		}
		b.emit(Call{Op: OpSetViewport, Rect: r})
		s.viewportDirty = false
	}
	if s.scissorDirty {
		var r image.Rectangle
		if s.key.Rasterizer.ScissorEnable {
			r = s.scissor
		}
		b.emit(Call{Op: OpSetScissorRect, Rect: r})
		s.scissorDirty = false
	}

	if s.uniformsDirty[drawstream.StageVertex] {
		b.upload(drawstream.StageVertex, 0, vsUniformBytes)
		s.uniformsDirty[drawstream.StageVertex] = false
		s.uniformGroup = true
	}
	if s.uniformsDirty[drawstream.StagePixel] {
		b.upload(drawstream.StagePixel, 0, psUniformBytes)
		s.uniformsDirty[drawstream.StagePixel] = false
		s.uniformGroup = true
	}
	if s.uniformGroup {
		b.emit(Call{Op: OpSetBindGroup, Group: GroupUniforms})
		s.uniformGroup = false
	}
	for stage, dirty := range s.resourcesDirty {
		if dirty {
			b.emit(Call{Op: OpSetBindGroup, Group: GroupVSResources + uint32(stage)})
			s.resourcesDirty[stage] = false
		}
	}
}

func (b *Backend) upload(stage drawstream.ShaderStage, slot uint32, n int) {
	b.emit(Call{Op: OpWriteBuffer, Stage: stage, Slot: slot, Bytes: n})
	b.stats.Uploads++
}

func (b *Backend) draw(c Call) {
	b.emit(c)
	b.stats.Draws++
}

func (b *Backend) emit(c Call) {
	b.calls = append(b.calls, c)
	b.stats.Calls++
}
