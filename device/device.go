// Package device defines the message protocol between the renderer and the
// goroutine that executes commands on an actual device. Nothing in here talks
// to a GPU; it only describes what can be asked of one.
package device

// Token identifies one creation request. Tokens are indices into
// per-resource tables, so tokens of different kinds may collide.
type Token uint

// Low-level handles, opaque to the renderer and passed back verbatim.
type (
	Buffer      uint32
	ArrayBuffer uint32
	Shader      uint32
	Program     uint32
	FrameBuffer uint32
	Surface     uint32
	Texture     uint32
	Sampler     uint32
)

// Slots the device binds resources to.
type (
	AttributeSlot     uint8
	UniformBufferSlot uint8
	UniformBlockIndex uint8
	TextureSlot       uint8
)

// Counts used by draw commands.
type (
	VertexCount uint16
	IndexCount  uint16
)

// Request is a message sent to the device. It is one of Call, Cast
// or SwapBuffers.
type Request interface {
	isRequest()
}

// Call asks the device to create something. Exactly one Reply carrying
// the same Token will follow.
type Call struct {
	Token   Token
	Command CallRequest
}

// Cast asks the device to change state or draw. No reply follows.
type Cast struct {
	Command CastRequest
}

// SwapBuffers finishes the frame. Exactly one Ack follows.
type SwapBuffers struct{}

func (Call) isRequest()        {}
func (Cast) isRequest()        {}
func (SwapBuffers) isRequest() {}

// Ack signals that a submitted frame has been consumed.
type Ack struct{}

// Reply carries the outcome of a Call.
type Reply struct {
	Token    Token
	Response Response
}

// Response is the typed payload of a Reply. Each implementation carries
// either a handle or a non-nil Err.
type Response interface {
	Failed() bool
}

// ArrayBufferReply answers CreateArrayBuffer.
type ArrayBufferReply struct {
	Handle ArrayBuffer
	Err    error
}

// FrameBufferReply answers CreateFrameBuffer.
type FrameBufferReply struct {
	Handle FrameBuffer
	Err    error
}

// ShaderReply answers CreateShader.
type ShaderReply struct {
	Handle Shader
	Err    *CreateShaderError
}

// ProgramReply answers CreateProgram. Meta.Name is the program handle.
type ProgramReply struct {
	Meta ProgramMeta
	Err  error
}

// BufferReply answers CreateBuffer.
type BufferReply struct {
	Handle Buffer
	Err    error
}

// TextureReply answers CreateTexture.
type TextureReply struct {
	Handle Texture
	Err    error
}

// SamplerReply answers CreateSampler.
type SamplerReply struct {
	Handle Sampler
	Err    error
}

// Failed implements Response.
func (r ArrayBufferReply) Failed() bool { return r.Err != nil }

// Failed implements Response.
func (r FrameBufferReply) Failed() bool { return r.Err != nil }

// Failed implements Response.
func (r ShaderReply) Failed() bool { return r.Err != nil }

// Failed implements Response.
func (r ProgramReply) Failed() bool { return r.Err != nil }

// Failed implements Response.
func (r BufferReply) Failed() bool { return r.Err != nil }

// Failed implements Response.
func (r TextureReply) Failed() bool { return r.Err != nil }

// Failed implements Response.
func (r SamplerReply) Failed() bool { return r.Err != nil }

// CallRequest is a creation command carried by a Call.
type CallRequest interface {
	isCall()
}

// CreateArrayBuffer requests a vertex layout object.
type CreateArrayBuffer struct{}

// CreateFrameBuffer requests a frame buffer object.
type CreateFrameBuffer struct{}

// CreateShader requests compilation of a single stage.
type CreateShader struct {
	Stage  Stage
	Source Source
}

// CreateProgram links already created shaders.
type CreateProgram struct {
	Shaders []Shader
}

// CreateBuffer requests a buffer, optionally filled with Data.
type CreateBuffer struct {
	Data Blob
}

// CreateTexture requests a texture described by Info.
type CreateTexture struct {
	Info TextureInfo
}

// CreateSampler requests a sampler described by Info.
type CreateSampler struct {
	Info SamplerInfo
}

func (CreateArrayBuffer) isCall() {}
func (CreateFrameBuffer) isCall() {}
func (CreateShader) isCall()      {}
func (CreateProgram) isCall()     {}
func (CreateBuffer) isCall()      {}
func (CreateTexture) isCall()     {}
func (CreateSampler) isCall()     {}
