// Package trace provides a text backend for drawstream frames.
// It writes one line per command with the value the command resolves to.
//
// The trace backend serves multiple purposes:
//   - Debugging batching decisions of a drawing façade
//   - Golden-file comparison in tests
//   - Reference implementation for other backends
//
// # Output Format
//
//	#000 UpdateBuffers batch=0
//	#002 BlendState #0 enable=true color=4/5/1 alpha=1/5/1 mask=15
//	#057 Draw start=0 count=6 instances=1
//
// Per-slot commands print their slot in brackets: VSTexture[2].
//
// # Example
//
//	import _ "github.com/gogpu/drawstream/backend/trace"
//
//	b := drawstream.MustBackend("trace")
//	err := frame.Playback(b)
//	b.(drawstream.WriterBackend).WriteTo(os.Stdout)
package trace

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/drawstream"
)

func init() {
	drawstream.Register("trace", func() drawstream.Backend {
		return New()
	})
}

// Backend formats replayed commands as text.
type Backend struct {
	buf     bytes.Buffer
	pos     int
	skipped int

	// Baseline controls whether the per-frame baseline records are printed.
	Baseline bool
}

var (
	_ drawstream.Backend       = (*Backend)(nil)
	_ drawstream.WriterBackend = (*Backend)(nil)
)

// New creates a trace backend that prints every command.
func New() *Backend {
	return &Backend{Baseline: true}
}

// Begin resets the output buffer.
func (b *Backend) Begin(f *drawstream.Frame) error {
	b.buf.Reset()
	b.pos = 0
	b.skipped = 0
	if !b.Baseline {
		b.skipped = min(drawstream.BaselineLen, f.Len())
	}
	return nil
}

// Apply writes one line for cmd.
func (b *Backend) Apply(f *drawstream.Frame, cmd drawstream.Command) error {
	pos := b.pos
	b.pos++
	if pos < b.skipped {
		return nil
	}

	fmt.Fprintf(&b.buf, "#%03d %s", pos, cmd.Type)
	if cmd.Type.IsPerSlot() {
		fmt.Fprintf(&b.buf, "[%d]", cmd.Slot)
	}
	if cmd.Type.IsState() {
		fmt.Fprintf(&b.buf, " #%d", cmd.Index)
	}
	b.buf.WriteByte(' ')
	b.buf.WriteString(Format(f, cmd))
	b.buf.WriteByte('\n')
	return nil
}

// End finishes the trace.
func (b *Backend) End() error {
	drawstream.Logger().Debug("trace: frame replayed",
		slog.Int("commands", b.pos),
		slog.Int("bytes", b.buf.Len()))
	return nil
}

// WriteTo writes the trace text to w.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf.Bytes())
	return int64(n), err
}

// String returns the trace text.
func (b *Backend) String() string {
	return b.buf.String()
}

// Format renders the value cmd resolves to in f.
func Format(f *drawstream.Frame, cmd drawstream.Command) string {
	switch v := f.Value(cmd).(type) {
	case nil:
		return "?"
	case uint32:
		if cmd.Type == drawstream.CmdDrawNull {
			return fmt.Sprintf("vertices=%d", v)
		}
		return fmt.Sprintf("batch=%d", v)
	case drawstream.DrawBatch:
		return formatBatch(v)
	case drawstream.LineBatch:
		return fmt.Sprintf("count=%d", v.IndexCount)
	case drawstream.MeshDraw:
		return fmt.Sprintf("%s diffuse=%s textured=%t", formatBatch(v.DrawBatch), vec4(v.Material.Diffuse), v.Material.HasTexture)
	case drawstream.ConstantBufferCommand:
		return fmt.Sprintf("%s slot=%d %v", v.Stage, v.Slot, f.Constants(v))
	case drawstream.BlendState:
		return fmt.Sprintf("enable=%t color=%s alpha=%s mask=%d", v.Enable, blend(v.Color), blend(v.Alpha), v.WriteMask)
	case drawstream.RasterizerState:
		return fmt.Sprintf("fill=%d cull=%d scissor=%t bias=%d", v.Fill, v.CullMode, v.ScissorEnable, v.DepthBias)
	case drawstream.SamplerState:
		return fmt.Sprintf("address=%d/%d/%d filter=%d/%d/%d aniso=%d", v.AddressU, v.AddressV, v.AddressW,
			v.MagFilter, v.MinFilter, v.MipmapFilter, v.MaxAnisotropy)
	case drawstream.TextureID:
		if !v.IsValid() {
			return "unbound"
		}
		return fmt.Sprintf("texture=%d", v)
	case drawstream.ShaderID:
		if !v.IsValid() {
			return "unbound"
		}
		return fmt.Sprintf("shader=%d", v)
	case drawstream.MeshID:
		if !v.IsValid() {
			return "unbound"
		}
		return fmt.Sprintf("mesh=%d", v)
	case mgl32.Vec4:
		return vec4(v)
	case mgl32.Vec3:
		return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
	case mgl32.Mat4:
		if v == mgl32.Ident4() {
			return "identity"
		}
		return fmt.Sprintf("%v", [16]float32(v))
	default:
		return fmt.Sprintf("%+v", v)
	}
}

func formatBatch(d drawstream.DrawBatch) string {
	return fmt.Sprintf("start=%d count=%d instances=%d", d.StartIndex, d.IndexCount, d.InstanceCount)
}

func vec4(v mgl32.Vec4) string {
	return fmt.Sprintf("(%g, %g, %g, %g)", v[0], v[1], v[2], v[3])
}

func blend(c drawstream.BlendComponent) string {
	return fmt.Sprintf("%d/%d/%d", c.SrcFactor, c.DstFactor, c.Operation)
}
