package drawstream

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// testTexture is a texture handle that counts retains.
type testTexture struct {
	id       TextureID
	retained int
	released int
}

func (t *testTexture) ID() TextureID { return t.id }
func (t *testTexture) Retain()       { t.retained++ }
func (t *testTexture) Release()      { t.released++ }

type testRenderTexture struct {
	testTexture
}

func (t *testRenderTexture) Width() uint32                  { return 256 }
func (t *testRenderTexture) Height() uint32                 { return 128 }
func (t *testRenderTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

type testMesh MeshID

func (m testMesh) ID() MeshID { return MeshID(m) }

type testShader ShaderID

func (s testShader) ID() ShaderID { return ShaderID(s) }

// recorded returns the commands emitted after the frame baseline.
func recorded(m *Manager, f *Frame) []Command {
	return f.Commands()[baselineLen(m):]
}

func baselineLen(m *Manager) int {
	return 2 + len(m.bindings)
}

func TestBaselineLen(t *testing.T) {
	if got := baselineLen(NewManager()); got != BaselineLen {
		t.Errorf("channel table yields %d baseline records, BaselineLen = %d", got, BaselineLen)
	}
}

func types(cmds []Command) []CommandType {
	out := make([]CommandType, len(cmds))
	for i, c := range cmds {
		out[i] = c.Type
	}
	return out
}

func equalTypes(a, b []CommandType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewManagerBaseline(t *testing.T) {
	m := NewManager()
	f := m.Finish()
	cmds := f.Commands()

	if len(cmds) != BaselineLen {
		t.Fatalf("baseline has %d commands, want %d", len(cmds), BaselineLen)
	}
	if cmds[0].Type != CmdUpdateBuffers || cmds[1].Type != CmdUpdateLineBuffers {
		t.Errorf("stream starts with %v, %v; want buffer uploads", cmds[0].Type, cmds[1].Type)
	}
	for i, c := range cmds {
		if c.Index != 0 {
			t.Errorf("baseline command %d (%v) index = %d, want 0", i, c.Type, c.Index)
		}
		if i >= 2 && !c.Type.IsState() {
			t.Errorf("baseline command %d is %v, want a state command", i, c.Type)
		}
	}
	if m.HasStateChange() {
		t.Error("fresh manager has pending state")
	}
	if m.HasDraw() {
		t.Error("fresh manager reports draws")
	}

	// Every per-slot channel appears once per slot.
	slots := map[CommandType]int{}
	for _, c := range cmds {
		if c.Type.IsPerSlot() {
			slots[c.Type]++
		}
	}
	for _, typ := range []CommandType{CmdVSSamplerState, CmdPSSamplerState, CmdVSTexture, CmdPSTexture} {
		if slots[typ] != MaxSamplerCount {
			t.Errorf("%v baseline records = %d, want %d", typ, slots[typ], MaxSamplerCount)
		}
	}
}

func TestPushIdempotent(t *testing.T) {
	m := NewManager()
	for range 5 {
		m.PushBlendState(BlendNonPremultiplied())
		m.PushColorMul(mgl32.Vec4{1, 1, 1, 1})
	}
	if m.HasStateChange() {
		t.Error("pushing current values marked the manager dirty")
	}
	f := m.Finish()
	if got := recorded(m, f); len(got) != 0 {
		t.Errorf("recorded %v, want nothing", types(got))
	}
	if got := m.Stats().Redundant; got != 10 {
		t.Errorf("Stats().Redundant = %d, want 10", got)
	}
}

func TestPushCancellation(t *testing.T) {
	m := NewManager()
	m.PushBlendState(BlendAdditive())
	if !m.HasStateChange() {
		t.Fatal("push of a new value did not mark state change")
	}
	m.PushBlendState(BlendNonPremultiplied())
	if m.HasStateChange() {
		t.Error("reverting to the committed value left state pending")
	}
	f := m.Finish()
	if got := recorded(m, f); len(got) != 0 {
		t.Errorf("recorded %v, want nothing", types(got))
	}
	if got := m.Stats().Cancelled; got != 1 {
		t.Errorf("Stats().Cancelled = %d, want 1", got)
	}
}

func TestPushCoalescing(t *testing.T) {
	m := NewManager()
	a := mgl32.Vec4{1, 0, 0, 1}
	b := mgl32.Vec4{0, 1, 0, 1}
	m.PushColorMul(a)
	m.PushColorMul(b)
	f := m.Finish()

	got := recorded(m, f)
	if len(got) != 1 || got[0].Type != CmdColorMul {
		t.Fatalf("recorded %v, want one ColorMul", types(got))
	}
	if v := f.ColorMul(got[0].Index); v != b {
		t.Errorf("ColorMul = %v, want %v", v, b)
	}
	if m.Stats().Coalesced != 1 {
		t.Errorf("Stats().Coalesced = %d, want 1", m.Stats().Coalesced)
	}
}

func TestDrawMerging(t *testing.T) {
	m := NewManager()
	m.PushDraw(3)
	m.PushDraw(5)
	if !m.HasDraw() {
		t.Error("HasDraw() = false with a pending batch")
	}
	f := m.Finish()

	got := recorded(m, f)
	if len(got) != 1 || got[0].Type != CmdDraw {
		t.Fatalf("recorded %v, want one Draw", types(got))
	}
	want := DrawBatch{StartIndex: 0, IndexCount: 8, InstanceCount: 1}
	if d := f.Draw(got[0].Index); d != want {
		t.Errorf("Draw = %+v, want %+v", d, want)
	}
}

func TestDrawSplitting(t *testing.T) {
	m := NewManager()
	m.PushDraw(6)
	m.PushBlendState(BlendAdditive())
	m.PushDraw(3)
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdDraw, CmdBlendState, CmdDraw}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	first, second := f.Draw(got[0].Index), f.Draw(got[2].Index)
	if first.IndexCount != 6 || second.IndexCount != 3 {
		t.Errorf("index counts = %d, %d; want 6, 3", first.IndexCount, second.IndexCount)
	}
	if second.StartIndex != 6 {
		t.Errorf("second batch StartIndex = %d, want 6", second.StartIndex)
	}
}

func TestHistoryGrowth(t *testing.T) {
	m := NewManager()
	const k = 5
	for i := 1; i <= k; i++ {
		m.PushScissorRect(image.Rect(0, 0, i, i))
		m.PushDraw(3)
	}
	f := m.Finish()

	if got := len(f.Data().ScissorRects); got != k+1 {
		t.Errorf("scissor history length = %d, want %d", got, k+1)
	}
	if got := f.ScissorRect(k); got != image.Rect(0, 0, k, k) {
		t.Errorf("ScissorRect(%d) = %v, want last pushed", k, got)
	}
}

func TestReservationIdempotent(t *testing.T) {
	m := NewManager()
	tex := &testTexture{id: 7}

	m.PushVSTexture(0, tex)
	m.PushPSTexture(3, tex)
	m.PushPSTexture(3, tex)

	if got := m.res.textures.Len(); got != 1 {
		t.Errorf("texture reservations = %d, want 1", got)
	}
	if tex.retained != 1 {
		t.Errorf("Retain called %d times, want 1", tex.retained)
	}

	f := m.Finish()
	if h, ok := f.Texture(7); !ok || h != Texture(tex) {
		t.Errorf("Texture(7) = %v, %v; want reserved handle", h, ok)
	}

	m.Reset()
	if tex.released != 1 {
		t.Errorf("Release called %d times after Reset, want 1", tex.released)
	}
	if m.res.textures.Len() != 0 {
		t.Error("reservations survived Reset")
	}
}

func TestNoOpPushDoesNotReserve(t *testing.T) {
	m := NewManager()
	m.PushPSTexture(0, &testTexture{id: 1})
	m.Flush()
	m.Reset()

	// Slot 0 is unbound again; pushing unbind is a no-op and reserves nothing.
	m.PushPSTexture(0, nil)
	if m.res.textures.Len() != 0 {
		t.Errorf("texture reservations = %d, want 0", m.res.textures.Len())
	}
	if m.HasStateChange() {
		t.Error("unbinding an unbound slot marked state change")
	}
}

func TestResetCarryForwardAndSentinel(t *testing.T) {
	m := NewManager()
	tex := &testTexture{id: 3}
	m.PushBlendState(BlendAdditive())
	m.PushPSTexture(1, tex)
	m.PushMesh(testMesh(9))
	m.PushCustomVS(testShader(4))
	m.PushDraw(6)
	m.Finish()

	m.Reset()
	f := m.Finish()
	d := f.Data()

	if len(d.BlendStates) != 1 || d.BlendStates[0] != BlendAdditive() {
		t.Errorf("blend history = %v, want [additive]", d.BlendStates)
	}
	if len(d.PSTextures[1]) != 1 || d.PSTextures[1][0] != InvalidTexture {
		t.Errorf("PS texture 1 history = %v, want [invalid]", d.PSTextures[1])
	}
	if len(d.Meshes) != 1 || d.Meshes[0] != InvalidMesh {
		t.Errorf("mesh history = %v, want [invalid]", d.Meshes)
	}
	if len(d.VertexShaders) != 1 || d.VertexShaders[0] != InvalidShader {
		t.Errorf("VS history = %v, want [invalid]", d.VertexShaders)
	}
	if got := m.CurrentPSTexture(1); got != InvalidTexture {
		t.Errorf("CurrentPSTexture(1) = %v, want invalid", got)
	}

	var sawBlend, sawUnbind bool
	for _, c := range f.Commands() {
		switch {
		case c.Type == CmdBlendState:
			sawBlend = f.BlendState(c.Index) == BlendAdditive()
		case c.Type == CmdPSTexture && c.Slot == 1:
			sawUnbind = f.PSTextureID(c.Slot, c.Index) == InvalidTexture
		}
	}
	if !sawBlend {
		t.Error("no baseline BlendState carrying the previous value")
	}
	if !sawUnbind {
		t.Error("no baseline unbind for PS texture slot 1")
	}
	if len(f.Commands()) != baselineLen(m) {
		t.Errorf("frame after Reset has %d commands, want baseline %d", len(f.Commands()), baselineLen(m))
	}
}

func TestResetUsesCommittedValue(t *testing.T) {
	m := NewManager()
	m.PushColorAdd(mgl32.Vec4{0.5, 0, 0, 0})
	m.Flush()
	// Pending, never flushed: must not survive the frame.
	m.PushColorAdd(mgl32.Vec4{0.9, 0, 0, 0})
	m.Reset()

	if got := m.CurrentColorAdd(); got != (mgl32.Vec4{0.5, 0, 0, 0}) {
		t.Errorf("CurrentColorAdd() = %v, want committed value", got)
	}
	if m.HasStateChange() {
		t.Error("Reset left state pending")
	}
}

// sharedTarget is a render target with an owner reference. It counts how
// often its reference count dropped to zero.
type sharedTarget struct {
	testRenderTexture
	refs      int
	destroyed int
}

func (t *sharedTarget) Retain() { t.refs++ }

func (t *sharedTarget) Release() {
	t.refs--
	if t.refs == 0 {
		t.destroyed++
	}
}

func TestRenderTargetCarriesReservation(t *testing.T) {
	m := NewManager()
	rt := &sharedTarget{testRenderTexture: testRenderTexture{testTexture{id: 42}}, refs: 1}
	m.PushRenderTarget(rt)
	m.PushDraw(6)
	m.Finish()

	for range 3 {
		m.Reset()
		if rt.destroyed != 0 {
			t.Fatalf("carried-forward render target reached zero references during Reset")
		}
	}
	if rt.refs != 2 {
		t.Errorf("refs = %d, want 2 (owner and frame)", rt.refs)
	}

	f := m.Finish()
	if got := f.RenderTarget(0); got != 42 {
		t.Errorf("render target baseline = %v, want 42", got)
	}
	if h, ok := f.RenderTexture(42); !ok || h != RenderTexture(rt) {
		t.Error("render target handle was not kept across Reset")
	}

	m.PushRenderTarget(nil)
	m.Flush()
	if got := m.CurrentRenderTarget(); got != InvalidTexture {
		t.Errorf("CurrentRenderTarget() = %v, want scene target", got)
	}
	m.Reset()
	if rt.refs != 1 || rt.destroyed != 0 {
		t.Errorf("after unbinding refs = %d destroyed = %d, want 1, 0", rt.refs, rt.destroyed)
	}
}

func TestScenarios(t *testing.T) {
	colorA := mgl32.Vec4{1, 0, 0, 1}

	tests := []struct {
		name   string
		record func(m *Manager)
		want   []CommandType
	}{
		{
			name:   "draw only",
			record: func(m *Manager) { m.PushDraw(6) },
			want:   []CommandType{CmdDraw},
		},
		{
			name: "color between draws",
			record: func(m *Manager) {
				m.PushDraw(6)
				m.PushColorMul(colorA)
				m.PushDraw(6)
			},
			want: []CommandType{CmdDraw, CmdColorMul, CmdDraw},
		},
		{
			name: "reverted blend",
			record: func(m *Manager) {
				m.PushBlendState(BlendAdditive())
				m.PushBlendState(BlendNonPremultiplied())
				m.PushDraw(3)
			},
			want: []CommandType{CmdDraw},
		},
		{
			name: "constant buffer between draws",
			record: func(m *Manager) {
				m.PushDraw(4)
				m.PushConstantBuffer(StagePixel, 1, []f32.Vec4{{1, 2, 3, 4}})
				m.PushDraw(4)
			},
			want: []CommandType{CmdDraw, CmdSetConstantBuffer, CmdDraw},
		},
		{
			name: "state after constant buffer",
			record: func(m *Manager) {
				m.PushConstantBuffer(StageVertex, 0, []f32.Vec4{{1, 0, 0, 0}})
				m.PushColorAdd(mgl32.Vec4{0.1, 0.1, 0.1, 0})
				m.PushDraw(3)
			},
			want: []CommandType{CmdSetConstantBuffer, CmdColorAdd, CmdDraw},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			tt.record(m)
			f := m.Finish()
			if got := types(recorded(m, f)); !equalTypes(got, tt.want) {
				t.Errorf("recorded %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScenarioFrameCarryOver(t *testing.T) {
	m := NewManager()
	m.PushBlendState(BlendAdditive())
	m.PushVSTexture(2, &testTexture{id: 5})
	m.PushDraw(6)
	m.Finish()

	m.Reset()
	f := m.Finish()
	d := f.Data()

	if len(d.BlendStates) != 1 || d.BlendStates[0] != BlendAdditive() {
		t.Errorf("frame 2 blend history = %v, want [B]", d.BlendStates)
	}
	if d.VSTextures[2][0] != InvalidTexture {
		t.Errorf("frame 2 VS texture 2 = %v, want unbound", d.VSTextures[2][0])
	}
	blends := 0
	for _, c := range f.Commands() {
		if c.Type == CmdBlendState {
			blends++
		}
	}
	if blends != 1 {
		t.Errorf("BlendState records = %d, want 1", blends)
	}
}

func TestFlushIdempotent(t *testing.T) {
	m := NewManager()
	m.PushColorMul(mgl32.Vec4{0, 0, 0, 1})
	m.PushDraw(3)
	m.Flush()
	n := len(m.commands)
	m.Flush()
	m.Flush()
	if len(m.commands) != n {
		t.Errorf("repeated Flush grew the stream from %d to %d", n, len(m.commands))
	}
}

func TestFlushOrder(t *testing.T) {
	m := NewManager()
	m.PushDraw(3)
	m.PushDrawLine(2)
	m.PushSunColor(mgl32.Vec3{1, 0, 0})
	m.PushBlendState(BlendAdditive())
	m.PushPSSamplerState(2, SamplerClampNearest())
	m.PushVSSamplerState(1, SamplerClampNearest())
	m.Flush()

	got := m.commands[baselineLen(m):]
	want := []Command{
		{Type: CmdDraw, Index: 0},
		{Type: CmdDrawLine, Index: 0},
		{Type: CmdBlendState, Index: 1},
		{Type: CmdVSSamplerState, Slot: 1, Index: 1},
		{Type: CmdPSSamplerState, Slot: 2, Index: 1},
		{Type: CmdSunColor, Index: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("flushed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLineAccumulatorIndependent(t *testing.T) {
	m := NewManager()
	m.PushDraw(3)
	m.PushDrawLine(2)
	m.PushDraw(3)
	m.PushDrawLine(4)
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdDraw, CmdDrawLine}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	if d := f.Draw(0); d.IndexCount != 6 {
		t.Errorf("Draw.IndexCount = %d, want 6", d.IndexCount)
	}
	if l := f.Line(0); l.IndexCount != 6 {
		t.Errorf("Line.IndexCount = %d, want 6", l.IndexCount)
	}
}

func TestUpdateBuffersResetsOffset(t *testing.T) {
	m := NewManager()
	m.PushDraw(6)
	m.PushColorMul(mgl32.Vec4{0, 1, 0, 1})
	m.PushDraw(3)
	m.PushUpdateBuffers(1)
	m.PushDraw(9)
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdDraw, CmdColorMul, CmdDraw, CmdUpdateBuffers, CmdDraw}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	starts := []uint32{f.Draw(0).StartIndex, f.Draw(1).StartIndex, f.Draw(2).StartIndex}
	if starts[0] != 0 || starts[1] != 6 || starts[2] != 0 {
		t.Errorf("start indices = %v, want [0 6 0]", starts)
	}
	if got[3].Index != 1 {
		t.Errorf("UpdateBuffers batch = %d, want 1", got[3].Index)
	}
}

func TestUpdateLineBuffers(t *testing.T) {
	m := NewManager()
	m.PushDrawLine(4)
	m.PushUpdateLineBuffers(2)
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdDrawLine, CmdUpdateLineBuffers}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	if v := f.Value(got[1]); v != uint32(2) {
		t.Errorf("Value(UpdateLineBuffers) = %v, want 2", v)
	}
}

func TestConstantBufferNeverDiffed(t *testing.T) {
	m := NewManager()
	data := []f32.Vec4{{1, 2, 3, 4}, {5, 6, 7, 8}}
	m.PushConstantBuffer(StageVertex, 2, data)
	m.PushConstantBuffer(StageVertex, 2, data)
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdSetConstantBuffer, CmdSetConstantBuffer}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	for i, c := range got {
		cb := f.ConstantBuffer(c.Index)
		if cb.Stage != StageVertex || cb.Slot != 2 || cb.VectorCount != 2 {
			t.Errorf("cb %d = %+v", i, cb)
		}
		payload := f.Constants(cb)
		if len(payload) != 2 || payload[1] != data[1] {
			t.Errorf("cb %d payload = %v, want %v", i, payload, data)
		}
	}
	if f.ConstantBuffer(got[1].Index).Offset != 2 {
		t.Errorf("second payload offset = %d, want 2", f.ConstantBuffer(got[1].Index).Offset)
	}
}

func TestConstantFloatsPadding(t *testing.T) {
	m := NewManager()
	m.PushConstantFloats(StagePixel, 0, []float32{1, 2, 3, 4, 5}, 3)
	f := m.Finish()

	cb := f.ConstantBuffer(0)
	payload := f.Constants(cb)
	want := []f32.Vec4{{1, 2, 3, 4}, {5, 0, 0, 0}, {0, 0, 0, 0}}
	if len(payload) != len(want) {
		t.Fatalf("payload = %v, want %v", payload, want)
	}
	for i := range want {
		if payload[i] != want[i] {
			t.Errorf("payload[%d] = %v, want %v", i, payload[i], want[i])
		}
	}
}

func TestDrawMesh(t *testing.T) {
	m := NewManager(WithDefaults(Defaults3D()))
	mat := DefaultMaterial()
	mat.Diffuse = mgl32.Vec4{1, 0, 0, 1}

	m.PushMesh(testMesh(1))
	m.PushDraw(6)
	m.PushDrawMesh(0, 36, 1, mat)
	m.PushDrawMesh(0, 36, 4, DefaultMaterial())
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdMesh, CmdDraw, CmdDrawMesh, CmdDrawMesh}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	if md := f.MeshDraw(0); md.Material != mat || md.IndexCount != 36 {
		t.Errorf("MeshDraw(0) = %+v", md)
	}
	if md := f.MeshDraw(1); md.InstanceCount != 4 {
		t.Errorf("MeshDraw(1).InstanceCount = %d, want 4", md.InstanceCount)
	}
	if h, ok := f.Mesh(1); !ok || h.ID() != 1 {
		t.Error("mesh 1 not reserved")
	}
}

func TestDrawMeshClosesBatch(t *testing.T) {
	m := NewManager()
	m.PushDraw(6)
	m.PushDrawMesh(0, 3, 1, DefaultMaterial())
	m.PushDraw(6)
	f := m.Finish()

	want := []CommandType{CmdDraw, CmdDrawMesh, CmdDraw}
	if got := types(recorded(m, f)); !equalTypes(got, want) {
		t.Errorf("recorded %v, want %v", got, want)
	}
}

func TestDrawMeshZeroInstancesPanics(t *testing.T) {
	m := NewManager()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for zero instance count")
		}
	}()
	m.PushDrawMesh(0, 3, 0, DefaultMaterial())
}

func TestNullVertices(t *testing.T) {
	m := NewManager()
	m.PushStandardVS(ShaderID(2))
	m.PushNullVertices(3)
	m.PushNullVertices(3)
	f := m.Finish()

	got := recorded(m, f)
	want := []CommandType{CmdVertexShader, CmdDrawNull, CmdDrawNull}
	if !equalTypes(types(got), want) {
		t.Fatalf("recorded %v, want %v", types(got), want)
	}
	if n := f.NullDraw(1); n != 3 {
		t.Errorf("NullDraw(1) = %d, want 3", n)
	}
	if !m.HasDraw() {
		t.Error("HasDraw() = false after null draws")
	}
	if _, ok := f.VertexShader(2); ok {
		t.Error("standard shader should not be reserved")
	}
}

func TestCustomShaderReserved(t *testing.T) {
	m := NewManager()
	m.PushCustomVS(testShader(11))
	m.PushCustomPS(testShader(12))
	f := m.Finish()

	if _, ok := f.VertexShader(11); !ok {
		t.Error("custom VS not reserved")
	}
	if _, ok := f.PixelShader(12); !ok {
		t.Error("custom PS not reserved")
	}
	if got := m.CurrentPS(); got != 12 {
		t.Errorf("CurrentPS() = %v, want 12", got)
	}
}

func TestSlotOutOfRangePanics(t *testing.T) {
	m := NewManager()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for slot out of range")
		}
	}()
	m.PushVSSamplerState(MaxSamplerCount, SamplerClampNearest())
}

func TestStats(t *testing.T) {
	m := NewManager()
	m.PushDraw(3)
	m.PushColorMul(mgl32.Vec4{0, 0, 0, 1})
	m.PushColorMul(mgl32.Vec4{0, 0, 1, 1})
	m.PushDraw(3)
	m.PushConstantBuffer(StageVertex, 0, []f32.Vec4{{}})
	m.Finish()

	s := m.Stats()
	if s.Draws != 2 {
		t.Errorf("Draws = %d, want 2", s.Draws)
	}
	if s.ConstantBuffers != 1 {
		t.Errorf("ConstantBuffers = %d, want 1", s.ConstantBuffers)
	}
	if s.Coalesced != 1 {
		t.Errorf("Coalesced = %d, want 1", s.Coalesced)
	}
	if s.Commands != baselineLen(m)+4 {
		t.Errorf("Commands = %d, want %d", s.Commands, baselineLen(m)+4)
	}

	m.Reset()
	if s := m.Stats(); s.Coalesced != 0 || s.Draws != 0 {
		t.Errorf("Stats after Reset = %+v, want zero counters", s)
	}
}

func BenchmarkRecordFrame(b *testing.B) {
	m := NewManager()
	colors := []mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}}
	b.ReportAllocs()
	for b.Loop() {
		m.Reset()
		for i := range 1000 {
			m.PushColorMul(colors[i%2])
			m.PushDraw(6)
		}
		m.Finish()
	}
}
