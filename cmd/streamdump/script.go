package main

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/drawstream"
)

// Script is a list of frames to record.
//
//	frames:
//	  - name: sprites
//	    ops:
//	      - draw: 6
//	      - color_mul: [1, 0, 0, 1]
//	      - ps_texture: {slot: 0, id: 3}
//	      - draw: 6
type Script struct {
	Frames []FrameScript `yaml:"frames"`
}

// FrameScript is one frame of push operations.
type FrameScript struct {
	Name string `yaml:"name"`
	Ops  []Op   `yaml:"ops"`
}

// Op is one push operation. Exactly one field is set.
type Op struct {
	Draw          *uint32     `yaml:"draw"`
	DrawLine      *uint32     `yaml:"draw_line"`
	NullVertices  *uint32     `yaml:"null_vertices"`
	UpdateBuffers *uint32     `yaml:"update_buffers"`
	UpdateLines   *uint32     `yaml:"update_line_buffers"`
	DrawMesh      *MeshDrawOp `yaml:"draw_mesh"`

	Blend        string `yaml:"blend"`
	Rasterizer   string `yaml:"rasterizer"`
	DepthStencil string `yaml:"depth_stencil"`
	Layout       string `yaml:"input_layout"`

	Scissor  []int `yaml:"scissor"`
	Viewport []int `yaml:"viewport"`

	ColorMul []float32 `yaml:"color_mul"`
	ColorAdd []float32 `yaml:"color_add"`

	VSTexture    *TextureOp      `yaml:"vs_texture"`
	PSTexture    *TextureOp      `yaml:"ps_texture"`
	RenderTarget *RenderTargetOp `yaml:"render_target"`
	Mesh         *int64          `yaml:"mesh"`
	VS           *uint32         `yaml:"vs"`
	PS           *uint32         `yaml:"ps"`
	Constants    *ConstantsOp    `yaml:"constants"`
}

// TextureOp binds a texture id to a slot. A negative id unbinds the slot.
type TextureOp struct {
	Slot uint32 `yaml:"slot"`
	ID   int64  `yaml:"id"`
}

// RenderTargetOp binds an offscreen target. A negative id selects the
// scene.
type RenderTargetOp struct {
	ID     int64  `yaml:"id"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
	Format string `yaml:"format"` // "rgba8" or "bgra8"
}

// MeshDrawOp draws the bound mesh.
type MeshDrawOp struct {
	Start     uint32    `yaml:"start"`
	Count     uint32    `yaml:"count"`
	Instances uint32    `yaml:"instances"`
	Diffuse   []float32 `yaml:"diffuse"`
}

// ConstantsOp uploads a user constant buffer.
type ConstantsOp struct {
	Stage  string      `yaml:"stage"` // "vs" or "ps"
	Slot   uint32      `yaml:"slot"`
	Values [][]float32 `yaml:"values"`
}

var errEmptyOp = errors.New("op sets no field")

// loadScript parses the YAML script at path.
func loadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return parseScript(raw)
}

func parseScript(raw []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Frames) == 0 {
		return nil, errors.New("parse script: no frames")
	}
	return &s, nil
}

// record replays fs into m and returns the finished frame.
func record(m *drawstream.Manager, fs FrameScript) (*drawstream.Frame, error) {
	m.Reset()
	for i, op := range fs.Ops {
		if err := apply(m, op); err != nil {
			return nil, fmt.Errorf("frame %q op %d: %w", fs.Name, i, err)
		}
	}
	return m.Finish(), nil
}

func apply(m *drawstream.Manager, op Op) error {
	switch {
	case op.Draw != nil:
		m.PushDraw(*op.Draw)
	case op.DrawLine != nil:
		m.PushDrawLine(*op.DrawLine)
	case op.NullVertices != nil:
		m.PushNullVertices(*op.NullVertices)
	case op.UpdateBuffers != nil:
		m.PushUpdateBuffers(*op.UpdateBuffers)
	case op.UpdateLines != nil:
		m.PushUpdateLineBuffers(*op.UpdateLines)
	case op.DrawMesh != nil:
		d := op.DrawMesh
		if d.Count == 0 {
			return errors.New("draw_mesh: count is zero")
		}
		mat := drawstream.DefaultMaterial()
		if d.Diffuse != nil {
			v, err := vec4(d.Diffuse)
			if err != nil {
				return fmt.Errorf("draw_mesh diffuse: %w", err)
			}
			mat.Diffuse = v
		}
		m.PushDrawMesh(d.Start, d.Count, max(d.Instances, 1), mat)

	case op.Blend != "":
		b, ok := blends[op.Blend]
		if !ok {
			return fmt.Errorf("unknown blend %q", op.Blend)
		}
		m.PushBlendState(b())
	case op.Rasterizer != "":
		r, ok := rasterizers[op.Rasterizer]
		if !ok {
			return fmt.Errorf("unknown rasterizer %q", op.Rasterizer)
		}
		m.PushRasterizerState(r())
	case op.DepthStencil != "":
		d, ok := depthStencils[op.DepthStencil]
		if !ok {
			return fmt.Errorf("unknown depth_stencil %q", op.DepthStencil)
		}
		m.PushDepthStencilState(d())
	case op.Layout != "":
		l, ok := layouts[op.Layout]
		if !ok {
			return fmt.Errorf("unknown input_layout %q", op.Layout)
		}
		m.PushInputLayout(l)

	case op.Scissor != nil:
		r, err := rect(op.Scissor)
		if err != nil {
			return fmt.Errorf("scissor: %w", err)
		}
		m.PushScissorRect(r)
	case op.Viewport != nil:
		if len(op.Viewport) == 0 {
			m.PushViewport(drawstream.Viewport{})
			return nil
		}
		r, err := rect(op.Viewport)
		if err != nil {
			return fmt.Errorf("viewport: %w", err)
		}
		m.PushViewport(drawstream.ViewportRect(r))

	case op.ColorMul != nil:
		v, err := vec4(op.ColorMul)
		if err != nil {
			return fmt.Errorf("color_mul: %w", err)
		}
		m.PushColorMul(v)
	case op.ColorAdd != nil:
		v, err := vec4(op.ColorAdd)
		if err != nil {
			return fmt.Errorf("color_add: %w", err)
		}
		m.PushColorAdd(v)

	case op.VSTexture != nil:
		if err := checkSlot(op.VSTexture.Slot); err != nil {
			return fmt.Errorf("vs_texture: %w", err)
		}
		m.PushVSTexture(op.VSTexture.Slot, textureOrNil(op.VSTexture.ID))
	case op.PSTexture != nil:
		if err := checkSlot(op.PSTexture.Slot); err != nil {
			return fmt.Errorf("ps_texture: %w", err)
		}
		m.PushPSTexture(op.PSTexture.Slot, textureOrNil(op.PSTexture.ID))
	case op.RenderTarget != nil:
		rt := op.RenderTarget
		if rt.ID < 0 {
			m.PushRenderTarget(nil)
			return nil
		}
		format, ok := formats[rt.Format]
		if !ok {
			return fmt.Errorf("render_target: unknown format %q", rt.Format)
		}
		m.PushRenderTarget(renderTexture{
			id:     drawstream.TextureID(rt.ID),
			width:  rt.Width,
			height: rt.Height,
			format: format,
		})
	case op.Mesh != nil:
		if *op.Mesh < 0 {
			m.PushMeshUnbind()
			return nil
		}
		m.PushMesh(mesh(*op.Mesh))
	case op.VS != nil:
		m.PushStandardVS(drawstream.ShaderID(*op.VS))
	case op.PS != nil:
		m.PushStandardPS(drawstream.ShaderID(*op.PS))
	case op.Constants != nil:
		return pushConstants(m, op.Constants)

	default:
		return errEmptyOp
	}
	return nil
}

func pushConstants(m *drawstream.Manager, c *ConstantsOp) error {
	var stage drawstream.ShaderStage
	switch c.Stage {
	case "vs":
		stage = drawstream.StageVertex
	case "ps":
		stage = drawstream.StagePixel
	default:
		return fmt.Errorf("constants: unknown stage %q", c.Stage)
	}
	data := make([]f32.Vec4, len(c.Values))
	for i, v := range c.Values {
		if len(v) > 4 {
			return fmt.Errorf("constants: vector %d has %d components", i, len(v))
		}
		copy(data[i][:], v)
	}
	m.PushConstantBuffer(stage, c.Slot, data)
	return nil
}

var blends = map[string]func() drawstream.BlendState{
	"nonpremultiplied": drawstream.BlendNonPremultiplied,
	"premultiplied":    drawstream.BlendPremultiplied,
	"additive":         drawstream.BlendAdditive,
	"opaque":           drawstream.BlendOpaque,
}

var rasterizers = map[string]func() drawstream.RasterizerState{
	"cull_none": drawstream.RasterizerSolidCullNone,
	"cull_back": drawstream.RasterizerSolidCullBack,
	"wireframe": drawstream.RasterizerWireframe,
	"scissor": func() drawstream.RasterizerState {
		r := drawstream.RasterizerSolidCullNone()
		r.ScissorEnable = true
		return r
	},
}

var depthStencils = map[string]func() drawstream.DepthStencilState{
	"disabled": drawstream.DepthStencilDisabled,
	"default":  drawstream.DepthStencilDefault3D,
}

var layouts = map[string]drawstream.InputLayout{
	"vertex2d": drawstream.LayoutVertex2D,
	"mesh":     drawstream.LayoutMesh,
	"line3d":   drawstream.LayoutLine3D,
}

var formats = map[string]gputypes.TextureFormat{
	"":      gputypes.TextureFormatRGBA8Unorm,
	"rgba8": gputypes.TextureFormatRGBA8Unorm,
	"bgra8": gputypes.TextureFormatBGRA8Unorm,
}

func checkSlot(slot uint32) error {
	if slot >= drawstream.MaxSamplerCount {
		return fmt.Errorf("slot %d out of range [0,%d)", slot, drawstream.MaxSamplerCount)
	}
	return nil
}

func rect(v []int) (image.Rectangle, error) {
	if len(v) != 4 {
		return image.Rectangle{}, fmt.Errorf("want [x, y, w, h], got %d values", len(v))
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func vec4(v []float32) (mgl32.Vec4, error) {
	if len(v) != 4 {
		return mgl32.Vec4{}, fmt.Errorf("want 4 components, got %d", len(v))
	}
	return mgl32.Vec4{v[0], v[1], v[2], v[3]}, nil
}

func textureOrNil(id int64) drawstream.Texture {
	if id < 0 {
		return nil
	}
	return texture(id)
}

// Script resources are identified by id only.

type texture drawstream.TextureID

func (t texture) ID() drawstream.TextureID { return drawstream.TextureID(t) }

type mesh drawstream.MeshID

func (m mesh) ID() drawstream.MeshID { return drawstream.MeshID(m) }

type renderTexture struct {
	id            drawstream.TextureID
	width, height uint32
	format        gputypes.TextureFormat
}

func (r renderTexture) ID() drawstream.TextureID       { return r.id }
func (r renderTexture) Width() uint32                  { return r.width }
func (r renderTexture) Height() uint32                 { return r.height }
func (r renderTexture) Format() gputypes.TextureFormat { return r.format }
