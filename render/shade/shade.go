// Package shade links user shader parameters to the variables a program
// declares.
//
// A parameter type implements ShaderParam: it resolves the names it binds
// against a ParameterSink once, producing a Link, and later replays its
// values for that Link through a Binder every time it is drawn. The
// renderer validates the link with a MetaSink built from the program's
// meta data.
package shade

import (
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render/resource"
)

// Indices into the uniform, block and texture lists of a ProgramMeta.
type (
	VarUniform uint16
	VarBlock   uint8
	VarTexture uint8
)

// TextureParam is a texture with an optional sampler.
type TextureParam struct {
	Texture resource.TextureHandle
	Sampler *resource.SamplerHandle
}

// Link is whatever a ShaderParam needs to remember between CreateLink
// and Bind. It is opaque to the renderer.
type Link interface{}

// ParameterSink answers name lookups while a link is created.
type ParameterSink interface {
	FindUniform(name string) (VarUniform, bool)
	FindBlock(name string) (VarBlock, bool)
	FindTexture(name string) (VarTexture, bool)
}

// Binder receives the values of a parameter object, one call per
// linked variable.
type Binder interface {
	OnUniform(v VarUniform, value device.UniformValue)
	OnBlock(v VarBlock, buffer resource.BufferHandle)
	OnTexture(v VarTexture, texture TextureParam)
}

// ShaderParam is implemented by anything that can feed a program.
type ShaderParam interface {
	// CreateLink looks up every variable the parameter binds. Referring
	// to a name the sink does not know must fail with an
	// *UnusedParameterError.
	CreateLink(sink ParameterSink) (Link, error)

	// Bind replays all values for a link created earlier.
	Bind(link Link, binder Binder)
}

// Bundle is a program paired with a validated parameter object.
type Bundle struct {
	program resource.ProgramHandle
	param   ShaderParam
	link    Link
}

// NewBundle pairs the program with its parameters. Use
// render.Renderer.BundleProgram to get a validated one.
func NewBundle(program resource.ProgramHandle, param ShaderParam, link Link) *Bundle {
	return &Bundle{program: program, param: param, link: link}
}

// Program returns the program token.
func (b *Bundle) Program() resource.ProgramHandle {
	return b.program
}

// Param returns the parameter object. Changes to its values are picked up
// by the next draw.
func (b *Bundle) Param() ShaderParam {
	return b.param
}

// Bind visits every linked value.
func (b *Bundle) Bind(binder Binder) {
	b.param.Bind(b.link, binder)
}

// BinderFuncs adapts three optional functions to a Binder.
type BinderFuncs struct {
	Uniform func(VarUniform, device.UniformValue)
	Block   func(VarBlock, resource.BufferHandle)
	Texture func(VarTexture, TextureParam)
}

// OnUniform implements Binder
func (f BinderFuncs) OnUniform(v VarUniform, value device.UniformValue) {
	if f.Uniform != nil {
		f.Uniform(v, value)
	}
}

// OnBlock implements Binder
func (f BinderFuncs) OnBlock(v VarBlock, buffer resource.BufferHandle) {
	if f.Block != nil {
		f.Block(v, buffer)
	}
}

// OnTexture implements Binder
func (f BinderFuncs) OnTexture(v VarTexture, texture TextureParam) {
	if f.Texture != nil {
		f.Texture(v, texture)
	}
}
