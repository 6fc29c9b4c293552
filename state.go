package drawstream

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// All channel value types are comparable so that a push can be diffed
// against the current and committed values with ==.

// BlendComponent describes the blend equation for color or alpha.
type BlendComponent struct {
	SrcFactor gputypes.BlendFactor
	DstFactor gputypes.BlendFactor
	Operation gputypes.BlendOperation
}

// BlendState is the output-merger blend configuration.
type BlendState struct {
	// Enable turns blending on. When false the source replaces the
	// destination and Color/Alpha are ignored.
	Enable bool

	Color BlendComponent
	Alpha BlendComponent

	// WriteMask selects the color channels written to the target.
	WriteMask gputypes.ColorWriteMask

	AlphaToCoverage bool
}

// BlendNonPremultiplied blends straight-alpha sources (src*a + dst*(1-a)).
func BlendNonPremultiplied() BlendState {
	return BlendState{
		Enable: true,
		Color: BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		WriteMask: gputypes.ColorWriteMaskAll,
	}
}

// BlendPremultiplied blends premultiplied-alpha sources. It mirrors
// gputypes.BlendStatePremultiplied.
func BlendPremultiplied() BlendState {
	p := gputypes.BlendStatePremultiplied()
	return BlendState{
		Enable: true,
		Color: BlendComponent{
			SrcFactor: p.Color.SrcFactor,
			DstFactor: p.Color.DstFactor,
			Operation: p.Color.Operation,
		},
		Alpha: BlendComponent{
			SrcFactor: p.Alpha.SrcFactor,
			DstFactor: p.Alpha.DstFactor,
			Operation: p.Alpha.Operation,
		},
		WriteMask: gputypes.ColorWriteMaskAll,
	}
}

// BlendAdditive adds straight-alpha sources to the destination.
func BlendAdditive() BlendState {
	b := BlendNonPremultiplied()
	b.Color.DstFactor = gputypes.BlendFactorOne
	b.Alpha.SrcFactor = gputypes.BlendFactorZero
	b.Alpha.DstFactor = gputypes.BlendFactorOne
	return b
}

// BlendOpaque disables blending.
func BlendOpaque() BlendState {
	return BlendState{WriteMask: gputypes.ColorWriteMaskAll}
}

// FillMode selects how triangles are rasterized.
type FillMode uint8

const (
	// FillSolid fills triangle interiors.
	FillSolid FillMode = iota
	// FillWireframe draws triangle edges only.
	FillWireframe
)

// RasterizerState is the rasterizer configuration.
type RasterizerState struct {
	Fill          FillMode
	CullMode      gputypes.CullMode
	ScissorEnable bool
	DepthBias     int32
}

// RasterizerSolidCullNone fills both faces. This is the 2D default.
func RasterizerSolidCullNone() RasterizerState {
	return RasterizerState{Fill: FillSolid, CullMode: gputypes.CullModeNone}
}

// RasterizerSolidCullBack fills front faces only. This is the 3D default.
func RasterizerSolidCullBack() RasterizerState {
	return RasterizerState{Fill: FillSolid, CullMode: gputypes.CullModeBack}
}

// RasterizerWireframe draws edges of both faces.
func RasterizerWireframe() RasterizerState {
	return RasterizerState{Fill: FillWireframe, CullMode: gputypes.CullModeNone}
}

// DepthStencilState is the depth and stencil test configuration.
type DepthStencilState struct {
	DepthEnable      bool
	DepthWriteEnable bool
	DepthCompare     gputypes.CompareFunction

	StencilEnable    bool
	StencilCompare   gputypes.CompareFunction
	StencilReadMask  uint8
	StencilWriteMask uint8
}

// DepthStencilDisabled turns off depth and stencil testing.
func DepthStencilDisabled() DepthStencilState {
	return DepthStencilState{
		DepthCompare:   gputypes.CompareFunctionAlways,
		StencilCompare: gputypes.CompareFunctionAlways,
	}
}

// DepthStencilDefault3D tests and writes depth.
func DepthStencilDefault3D() DepthStencilState {
	return DepthStencilState{
		DepthEnable:      true,
		DepthWriteEnable: true,
		DepthCompare:     gputypes.CompareFunctionLessEqual,
		StencilCompare:   gputypes.CompareFunctionAlways,
	}
}

// SamplerState is a texture sampler configuration for one slot.
// LODBias must not be NaN, since states are diffed with ==.
type SamplerState struct {
	AddressU      gputypes.AddressMode
	AddressV      gputypes.AddressMode
	AddressW      gputypes.AddressMode
	MagFilter     gputypes.FilterMode
	MinFilter     gputypes.FilterMode
	MipmapFilter  gputypes.FilterMode
	MaxAnisotropy uint16
	LODBias       float32
}

// SamplerClampLinear clamps coordinates and filters linearly. This is the
// 2D default.
func SamplerClampLinear() SamplerState {
	return SamplerState{
		AddressU:      gputypes.AddressModeClampToEdge,
		AddressV:      gputypes.AddressModeClampToEdge,
		AddressW:      gputypes.AddressModeClampToEdge,
		MagFilter:     gputypes.FilterModeLinear,
		MinFilter:     gputypes.FilterModeLinear,
		MipmapFilter:  gputypes.FilterModeLinear,
		MaxAnisotropy: 1,
	}
}

// SamplerClampNearest clamps coordinates without filtering.
func SamplerClampNearest() SamplerState {
	s := SamplerClampLinear()
	s.MagFilter = gputypes.FilterModeNearest
	s.MinFilter = gputypes.FilterModeNearest
	s.MipmapFilter = gputypes.FilterModeNearest
	return s
}

// SamplerRepeatAniso wraps coordinates with anisotropic filtering. This is
// the 3D default.
func SamplerRepeatAniso() SamplerState {
	s := SamplerClampLinear()
	s.AddressU = gputypes.AddressModeRepeat
	s.AddressV = gputypes.AddressModeRepeat
	s.AddressW = gputypes.AddressModeRepeat
	s.MaxAnisotropy = 4
	return s
}

// Viewport is an optional viewport rectangle. A disabled viewport covers
// the whole render target.
type Viewport struct {
	Rect    image.Rectangle
	Enabled bool
}

// ViewportRect returns an enabled viewport covering r.
func ViewportRect(r image.Rectangle) Viewport {
	return Viewport{Rect: r, Enabled: true}
}

// SDFParams are the signed-distance-field text rendering parameters:
// threshold/smoothing, outline color, and shadow color.
type SDFParams [3]mgl32.Vec4

// InputLayout selects the vertex format of subsequent draws.
type InputLayout uint8

const (
	// LayoutVertex2D is the 2D shape vertex format.
	LayoutVertex2D InputLayout = iota
	// LayoutMesh is the 3D mesh vertex format.
	LayoutMesh
	// LayoutLine3D is the 3D line vertex format.
	LayoutLine3D
)

// String returns the layout name.
func (l InputLayout) String() string {
	switch l {
	case LayoutVertex2D:
		return "Vertex2D"
	case LayoutMesh:
		return "Mesh"
	case LayoutLine3D:
		return "Line3D"
	}
	return "Unknown"
}

// Material is the Phong material attached to a mesh draw.
type Material struct {
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec3
	Emission  mgl32.Vec3
	Shininess float32

	HasTexture bool
}

// DefaultMaterial returns a white, untextured material.
func DefaultMaterial() Material {
	return Material{
		Ambient:   mgl32.Vec3{1, 1, 1},
		Diffuse:   mgl32.Vec4{1, 1, 1, 1},
		Shininess: 10,
	}
}

// Defaults holds the value every carry-forward channel starts from when a
// Manager is created.
type Defaults struct {
	Blend        BlendState
	Rasterizer   RasterizerState
	DepthStencil DepthStencilState
	Sampler      SamplerState
	Scissor      image.Rectangle
	Viewport     Viewport
	SDF          SDFParams
	InputLayout  InputLayout

	ColorMul          mgl32.Vec4
	ColorAdd          mgl32.Vec4
	CombinedTransform mgl32.Mat4
	CameraTransform   mgl32.Mat4
	EyePosition       mgl32.Vec3
	LocalTransform    mgl32.Mat4
	UVTransform       mgl32.Vec4

	GlobalAmbientColor mgl32.Vec3
	SunDirection       mgl32.Vec3
	SunColor           mgl32.Vec3
}

// Defaults2D returns the baseline state of the 2D renderer.
func Defaults2D() Defaults {
	return Defaults{
		Blend:        BlendNonPremultiplied(),
		Rasterizer:   RasterizerSolidCullNone(),
		DepthStencil: DepthStencilDisabled(),
		Sampler:      SamplerClampLinear(),
		SDF: SDFParams{
			{0.5, 0.5, 0, 0},
			{0, 0, 0, 1},
			{0, 0, 0, 0.5},
		},
		InputLayout: LayoutVertex2D,

		ColorMul:          mgl32.Vec4{1, 1, 1, 1},
		CombinedTransform: mgl32.Ident4(),
		CameraTransform:   mgl32.Ident4(),
		LocalTransform:    mgl32.Ident4(),
		UVTransform:       mgl32.Vec4{1, 1, 0, 0},

		GlobalAmbientColor: mgl32.Vec3{0.4, 0.4, 0.4},
		SunDirection:       mgl32.Vec3{1, 1, -1}.Normalize(),
		SunColor:           mgl32.Vec3{1, 1, 1},
	}
}

// Defaults3D returns the baseline state of the 3D renderer.
func Defaults3D() Defaults {
	d := Defaults2D()
	d.Blend = BlendOpaque()
	d.Rasterizer = RasterizerSolidCullBack()
	d.DepthStencil = DepthStencilDefault3D()
	d.Sampler = SamplerRepeatAniso()
	d.InputLayout = LayoutMesh
	return d
}
