package device

import "github.com/gogpu/gputypes"

// CastRequest is a fire-and-forget command carried by a Cast.
type CastRequest interface {
	isCast()
}

// SetPrimitiveState sets the rasterizer state.
type SetPrimitiveState struct {
	Primitive Primitive
}

// SetDepthStencilState sets depth and stencil tests. Nil disables a test.
type SetDepthStencilState struct {
	Depth   *Depth
	Stencil *Stencil
	Cull    gputypes.CullMode
}

// SetBlendState sets color blending. Nil disables blending.
type SetBlendState struct {
	Blend *gputypes.BlendState
}

// BindArrayBuffer binds a vertex layout object.
type BindArrayBuffer struct {
	ArrayBuffer ArrayBuffer
}

// BindFrameBuffer binds a frame buffer object.
type BindFrameBuffer struct {
	FrameBuffer FrameBuffer
}

// BindTarget attaches a plane to the bound frame buffer.
type BindTarget struct {
	Target Target
	Plane  Plane
}

// BindProgram makes a program current.
type BindProgram struct {
	Program Program
}

// BindUniform sets a plain uniform value.
type BindUniform struct {
	Location Location
	Value    UniformValue
}

// BindUniformBlock binds a buffer to a program's uniform block.
type BindUniformBlock struct {
	Program Program
	Slot    UniformBufferSlot
	Index   UniformBlockIndex
	Buffer  Buffer
}

// BindTexture binds a texture, and optionally a sampler, to a slot.
type BindTexture struct {
	Slot    TextureSlot
	Texture Texture
	Sampler *Sampler
}

// BindAttribute binds a vertex attribute to a buffer region.
type BindAttribute struct {
	Slot   AttributeSlot
	Buffer Buffer
	Count  AttribCount
	Type   AttribType
	Stride AttribStride
	Offset AttribOffset
}

// BindIndex binds the index buffer used by DrawIndexed.
type BindIndex struct {
	Buffer Buffer
}

// Draw draws the vertex range [Start, End).
type Draw struct {
	Start, End VertexCount
}

// DrawIndexed draws the index range [Start, End).
type DrawIndexed struct {
	Start, End IndexCount
}

// UpdateBuffer replaces buffer contents.
type UpdateBuffer struct {
	Buffer Buffer
	Data   Blob
}

// UpdateTexture replaces a region of a texture.
type UpdateTexture struct {
	Texture Texture
	Info    ImageInfo
	Data    Blob
}

// Clear clears the bound frame buffer.
type Clear struct {
	Data ClearData
}

func (SetPrimitiveState) isCast()    {}
func (SetDepthStencilState) isCast() {}
func (SetBlendState) isCast()        {}
func (BindArrayBuffer) isCast()      {}
func (BindFrameBuffer) isCast()      {}
func (BindTarget) isCast()           {}
func (BindProgram) isCast()          {}
func (BindUniform) isCast()          {}
func (BindUniformBlock) isCast()     {}
func (BindTexture) isCast()          {}
func (BindAttribute) isCast()        {}
func (BindIndex) isCast()            {}
func (Draw) isCast()                 {}
func (DrawIndexed) isCast()          {}
func (UpdateBuffer) isCast()         {}
func (UpdateTexture) isCast()        {}
func (Clear) isCast()                {}
