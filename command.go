package drawstream

// CommandType identifies the kind of a recorded command.
//
// Draw and buffer types index into the frame's draw arrays. Channel types
// index into the history of the channel they name; per-slot channel types
// additionally carry the slot in Command.Slot.
type CommandType uint8

const (
	CmdNull CommandType = iota

	// Buffer upload markers
	CmdUpdateBuffers     // Upload triangle vertex/index batch (Index = batch)
	CmdUpdateLineBuffers // Upload line vertex/index batch (Index = batch)

	// Draw commands
	CmdDraw              // Merged triangle batch (Index into draws)
	CmdDrawLine          // Merged line batch (Index into line draws)
	CmdDrawMesh          // Single mesh draw with material (Index into mesh draws)
	CmdDrawNull          // Vertex-bufferless draw (Index into null draws)
	CmdSetConstantBuffer // Constant buffer upload (Index into constant buffers)

	// Pipeline state channels
	CmdBlendState
	CmdRasterizerState
	CmdDepthStencilState
	CmdVSSamplerState // per slot
	CmdPSSamplerState // per slot
	CmdScissorRect
	CmdViewport
	CmdSDFParams
	CmdRenderTarget
	CmdInputLayout
	CmdVertexShader
	CmdPixelShader

	// Shader parameter channels
	CmdColorMul
	CmdColorAdd
	CmdCombinedTransform
	CmdCameraTransform
	CmdEyePosition
	CmdLocalTransform
	CmdUVTransform

	// Resource binding channels
	CmdVSTexture // per slot
	CmdPSTexture // per slot
	CmdMesh

	// Lighting channels
	CmdGlobalAmbientColor
	CmdSunDirection
	CmdSunColor

	cmdCount
)

var commandTypeNames = [...]string{
	CmdNull:               "Null",
	CmdUpdateBuffers:      "UpdateBuffers",
	CmdUpdateLineBuffers:  "UpdateLineBuffers",
	CmdDraw:               "Draw",
	CmdDrawLine:           "DrawLine",
	CmdDrawMesh:           "DrawMesh",
	CmdDrawNull:           "DrawNull",
	CmdSetConstantBuffer:  "SetConstantBuffer",
	CmdBlendState:         "BlendState",
	CmdRasterizerState:    "RasterizerState",
	CmdDepthStencilState:  "DepthStencilState",
	CmdVSSamplerState:     "VSSamplerState",
	CmdPSSamplerState:     "PSSamplerState",
	CmdScissorRect:        "ScissorRect",
	CmdViewport:           "Viewport",
	CmdSDFParams:          "SDFParams",
	CmdRenderTarget:       "RenderTarget",
	CmdInputLayout:        "InputLayout",
	CmdVertexShader:       "VertexShader",
	CmdPixelShader:        "PixelShader",
	CmdColorMul:           "ColorMul",
	CmdColorAdd:           "ColorAdd",
	CmdCombinedTransform:  "CombinedTransform",
	CmdCameraTransform:    "CameraTransform",
	CmdEyePosition:        "EyePosition",
	CmdLocalTransform:     "LocalTransform",
	CmdUVTransform:        "UVTransform",
	CmdVSTexture:          "VSTexture",
	CmdPSTexture:          "PSTexture",
	CmdMesh:               "Mesh",
	CmdGlobalAmbientColor: "GlobalAmbientColor",
	CmdSunDirection:       "SunDirection",
	CmdSunColor:           "SunColor",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) && commandTypeNames[c] != "" {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// IsDraw reports whether the command submits primitives.
func (c CommandType) IsDraw() bool {
	return c >= CmdDraw && c <= CmdDrawNull
}

// IsState reports whether the command references a state channel history.
func (c CommandType) IsState() bool {
	return c >= CmdBlendState && c < cmdCount
}

// IsPerSlot reports whether the command type has one channel per slot.
func (c CommandType) IsPerSlot() bool {
	switch c {
	case CmdVSSamplerState, CmdPSSamplerState, CmdVSTexture, CmdPSTexture:
		return true
	}
	return false
}

// Command is one record of the command stream.
//
// Index is a position in the array named by Type: a channel history for
// state types, a draw array for draw types, the constant buffer table for
// CmdSetConstantBuffer, or the batch number for buffer upload markers.
type Command struct {
	Type  CommandType
	Slot  uint8
	Index uint32
}

// DrawBatch is a merged run of triangle indices drawn under one state.
type DrawBatch struct {
	StartIndex    uint32
	IndexCount    uint32
	InstanceCount uint32
}

// LineBatch is a merged run of line-list indices.
type LineBatch struct {
	IndexCount uint32
}

// MeshDraw is a single mesh submission. Mesh draws are never merged
// because each carries its own material.
type MeshDraw struct {
	DrawBatch
	Material Material
}

// ConstantBufferCommand describes one constant buffer upload. The payload
// is VectorCount vectors starting at Offset in the frame's constant arena.
type ConstantBufferCommand struct {
	Stage       ShaderStage
	Slot        uint32
	Offset      uint32
	VectorCount uint32
}

// ShaderStage selects the programmable stage a binding applies to.
type ShaderStage uint8

const (
	// StageVertex is the vertex shader stage.
	StageVertex ShaderStage = iota
	// StagePixel is the pixel (fragment) shader stage.
	StagePixel

	stageCount
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "VS"
	case StagePixel:
		return "PS"
	}
	return "Unknown"
}

// MaxSamplerCount is the number of sampler and texture slots per stage.
const MaxSamplerCount = 8
