package resource

import (
	"fmt"

	"github.com/devblok/korender/device"
)

// Tokens handed out to users, one alias per resource kind.
type (
	BufferHandle      = device.Token
	ArrayBufferHandle = device.Token
	ShaderHandle      = device.Token
	ProgramHandle     = device.Token
	TextureHandle     = device.Token
	SamplerHandle     = device.Token
	FrameBufferHandle = device.Token
)

// Kind names a resource table.
type Kind int

// Resource kinds
const (
	KindBuffer Kind = iota
	KindArrayBuffer
	KindShader
	KindProgram
	KindTexture
	KindSampler
	KindFrameBuffer
)

var kindNames = [...]string{
	KindBuffer:      "buffer",
	KindArrayBuffer: "array buffer",
	KindShader:      "shader",
	KindProgram:     "program",
	KindTexture:     "texture",
	KindSampler:     "sampler",
	KindFrameBuffer: "frame buffer",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Cache holds one table per resource kind.
type Cache struct {
	Buffers      Table[device.Buffer]
	ArrayBuffers Table[device.ArrayBuffer]
	Shaders      Table[device.Shader]
	Programs     Table[device.ProgramMeta]
	Textures     Table[device.Texture]
	Samplers     Table[device.Sampler]
	FrameBuffers Table[device.FrameBuffer]
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		Buffers:      Table[device.Buffer]{kind: KindBuffer},
		ArrayBuffers: Table[device.ArrayBuffer]{kind: KindArrayBuffer},
		Shaders:      Table[device.Shader]{kind: KindShader},
		Programs:     Table[device.ProgramMeta]{kind: KindProgram},
		Textures:     Table[device.Texture]{kind: KindTexture},
		Samplers:     Table[device.Sampler]{kind: KindSampler},
		FrameBuffers: Table[device.FrameBuffer]{kind: KindFrameBuffer},
	}
}

// CreateSlot allocates the next token of the given kind.
func (c *Cache) CreateSlot(kind Kind) device.Token {
	switch kind {
	case KindBuffer:
		return c.Buffers.Alloc()
	case KindArrayBuffer:
		return c.ArrayBuffers.Alloc()
	case KindShader:
		return c.Shaders.Alloc()
	case KindProgram:
		return c.Programs.Alloc()
	case KindTexture:
		return c.Textures.Alloc()
	case KindSampler:
		return c.Samplers.Alloc()
	case KindFrameBuffer:
		return c.FrameBuffers.Alloc()
	}
	panic(fmt.Sprintf("resource: unknown kind %d", kind))
}

// IsPending reports whether the slot is still waiting for a reply.
func (c *Cache) IsPending(kind Kind, token device.Token) bool {
	switch kind {
	case KindBuffer:
		return c.Buffers.Get(token).IsPending()
	case KindArrayBuffer:
		return c.ArrayBuffers.Get(token).IsPending()
	case KindShader:
		return c.Shaders.Get(token).IsPending()
	case KindProgram:
		return c.Programs.Get(token).IsPending()
	case KindTexture:
		return c.Textures.Get(token).IsPending()
	case KindSampler:
		return c.Samplers.Get(token).IsPending()
	case KindFrameBuffer:
		return c.FrameBuffers.Get(token).IsPending()
	}
	panic(fmt.Sprintf("resource: unknown kind %d", kind))
}

// Process applies one device reply. A failed reply marks the slot Failed
// and returns the classified error for queuing. Replies that break the
// protocol (unknown token, double resolution, unknown response) panic
// with a *ProtocolError.
func (c *Cache) Process(reply device.Reply) *DeviceError {
	t := reply.Token
	switch r := reply.Response.(type) {
	case device.BufferReply:
		c.Buffers.resolve(t, r.Handle, r.Err)
		if r.Err != nil {
			return &DeviceError{Kind: ErrNewBuffer, Token: t, Err: r.Err}
		}
	case device.ArrayBufferReply:
		c.ArrayBuffers.resolve(t, r.Handle, r.Err)
		if r.Err != nil {
			return &DeviceError{Kind: ErrNewArrayBuffer, Token: t, Err: r.Err}
		}
	case device.ShaderReply:
		if r.Err != nil {
			c.Shaders.resolve(t, 0, r.Err)
			return &DeviceError{Kind: ErrNewShader, Token: t, Err: r.Err, Shader: r.Err}
		}
		c.Shaders.resolve(t, r.Handle, nil)
	case device.ProgramReply:
		c.Programs.resolve(t, r.Meta, r.Err)
		if r.Err != nil {
			return &DeviceError{Kind: ErrNewProgram, Token: t, Err: r.Err}
		}
	case device.FrameBufferReply:
		c.FrameBuffers.resolve(t, r.Handle, r.Err)
		if r.Err != nil {
			return &DeviceError{Kind: ErrNewFrameBuffer, Token: t, Err: r.Err}
		}
	case device.TextureReply:
		c.Textures.resolve(t, r.Handle, r.Err)
		if r.Err != nil {
			return &DeviceError{Kind: ErrNewTexture, Token: t, Err: r.Err}
		}
	case device.SamplerReply:
		c.Samplers.resolve(t, r.Handle, r.Err)
		if r.Err != nil {
			return &DeviceError{Kind: ErrNewSampler, Token: t, Err: r.Err}
		}
	default:
		panic(&ProtocolError{Kind: -1, Token: t, Reason: fmt.Sprintf("unexpected response %T", reply.Response)})
	}
	return nil
}
