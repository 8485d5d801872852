package shade

import (
	"sort"

	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render/resource"
)

// ParamSet is a ShaderParam backed by maps keyed by variable name. Values
// may be changed after bundling; adding names requires a new bundle.
type ParamSet struct {
	Uniforms map[string]device.UniformValue
	Blocks   map[string]resource.BufferHandle
	Textures map[string]TextureParam
}

// NewParamSet returns an empty ParamSet.
func NewParamSet() *ParamSet {
	return &ParamSet{
		Uniforms: make(map[string]device.UniformValue),
		Blocks:   make(map[string]resource.BufferHandle),
		Textures: make(map[string]TextureParam),
	}
}

type paramSetLink struct {
	uniforms []string
	blocks   []string
	textures []string

	uniformVars []VarUniform
	blockVars   []VarBlock
	textureVars []VarTexture
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CreateLink implements ShaderParam
func (p *ParamSet) CreateLink(sink ParameterSink) (Link, error) {
	link := &paramSetLink{
		uniforms: sortedKeys(p.Uniforms),
		blocks:   sortedKeys(p.Blocks),
		textures: sortedKeys(p.Textures),
	}
	for _, name := range link.uniforms {
		v, ok := sink.FindUniform(name)
		if !ok {
			return nil, &UnusedParameterError{Kind: ParamUniform, Name: name}
		}
		link.uniformVars = append(link.uniformVars, v)
	}
	for _, name := range link.blocks {
		v, ok := sink.FindBlock(name)
		if !ok {
			return nil, &UnusedParameterError{Kind: ParamBlock, Name: name}
		}
		link.blockVars = append(link.blockVars, v)
	}
	for _, name := range link.textures {
		v, ok := sink.FindTexture(name)
		if !ok {
			return nil, &UnusedParameterError{Kind: ParamTexture, Name: name}
		}
		link.textureVars = append(link.textureVars, v)
	}
	return link, nil
}

// Bind implements ShaderParam. Names removed since linking are skipped.
func (p *ParamSet) Bind(link Link, binder Binder) {
	l, ok := link.(*paramSetLink)
	if !ok {
		return
	}
	for i, name := range l.uniforms {
		if value, ok := p.Uniforms[name]; ok {
			binder.OnUniform(l.uniformVars[i], value)
		}
	}
	for i, name := range l.blocks {
		if buf, ok := p.Blocks[name]; ok {
			binder.OnBlock(l.blockVars[i], buf)
		}
	}
	for i, name := range l.textures {
		if tex, ok := p.Textures[name]; ok {
			binder.OnTexture(l.textureVars[i], tex)
		}
	}
}
