package headless

import (
	"errors"
	"fmt"
	"sort"

	"github.com/devblok/korender/device"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

var (
	// ErrNoEntryPoint is returned when a shader lacks an entry point for
	// the stage it is created for.
	ErrNoEntryPoint = errors.New("headless: no entry point for stage")

	// ErrUnknownShader is returned when a program refers to a shader
	// handle the device never created.
	ErrUnknownShader = errors.New("headless: unknown shader")

	// ErrIncompleteProgram is returned when a program does not have both
	// a vertex and a fragment shader.
	ErrIncompleteProgram = errors.New("headless: program needs a vertex and a fragment shader")
)

// shaderModule is a compiled shader kept for linking.
type shaderModule struct {
	stage  device.Stage
	module *ir.Module
}

func irStage(stage device.Stage) ir.ShaderStage {
	if stage == device.FragmentStage {
		return ir.StageFragment
	}
	return ir.StageVertex
}

// compile parses and lowers WGSL source, and checks it has an entry point
// for the requested stage.
func compile(stage device.Stage, src device.Source) (*shaderModule, *device.CreateShaderError) {
	ast, err := naga.Parse(string(src))
	if err != nil {
		return nil, &device.CreateShaderError{Kind: device.ShaderCompilationFailed, Log: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, string(src))
	if err != nil {
		return nil, &device.CreateShaderError{Kind: device.ShaderCompilationFailed, Log: err.Error()}
	}
	if entryPoint(module, irStage(stage)) == nil {
		return nil, &device.CreateShaderError{
			Kind: device.ShaderModelNotSupported,
			Log:  fmt.Sprintf("%s: %s", ErrNoEntryPoint, stage),
		}
	}
	return &shaderModule{stage: stage, module: module}, nil
}

func entryPoint(m *ir.Module, stage ir.ShaderStage) *ir.Function {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == stage {
			return &m.EntryPoints[i].Function
		}
	}
	return nil
}

// Reflect compiles a vertex and a fragment shader and returns the meta
// data of the program linking them. Name is left zero.
func Reflect(vs, fs device.Source) (device.ProgramMeta, error) {
	vsm, serr := compileSafe(device.VertexStage, vs)
	if serr != nil {
		return device.ProgramMeta{}, fmt.Errorf("vertex shader: %w", serr)
	}
	fsm, serr := compileSafe(device.FragmentStage, fs)
	if serr != nil {
		return device.ProgramMeta{}, fmt.Errorf("fragment shader: %w", serr)
	}
	return link(0, []*shaderModule{vsm, fsm})
}

// link builds the program meta data from compiled shaders.
func link(name device.Program, shaders []*shaderModule) (device.ProgramMeta, error) {
	var vs, fs *shaderModule
	for _, s := range shaders {
		switch s.stage {
		case device.VertexStage:
			vs = s
		case device.FragmentStage:
			fs = s
		}
	}
	if vs == nil || fs == nil {
		return device.ProgramMeta{}, ErrIncompleteProgram
	}

	meta := device.ProgramMeta{Name: name}
	meta.Attributes = attributes(vs.module, entryPoint(vs.module, ir.StageVertex))

	seen := make(map[string]bool)
	for _, s := range []*shaderModule{vs, fs} {
		for _, gv := range s.module.GlobalVariables {
			if seen[gv.Name] || int(gv.Type) >= len(s.module.Types) {
				continue
			}
			seen[gv.Name] = true
			inner := s.module.Types[gv.Type].Inner
			loc := bindingLocation(gv.Binding)

			switch t := inner.(type) {
			case ir.ImageType:
				meta.Textures = append(meta.Textures, device.SamplerVar{
					Name:     gv.Name,
					Location: loc,
					BaseType: device.BaseF32,
					Sampled:  t.Class == ir.ImageClassSampled,
				})
			case ir.StructType:
				if gv.Space == ir.SpaceUniform {
					meta.Blocks = append(meta.Blocks, device.BlockVar{Name: gv.Name, Size: t.Span})
				}
			default:
				if gv.Space != ir.SpaceUniform && gv.Space != ir.SpacePushConstant {
					continue
				}
				if base, container, ok := shape(inner); ok {
					meta.Uniforms = append(meta.Uniforms, device.UniformVar{
						Name:      gv.Name,
						Location:  loc,
						Count:     1,
						BaseType:  base,
						Container: container,
					})
				}
			}
		}
	}
	return meta, nil
}

func bindingLocation(b *ir.ResourceBinding) device.Location {
	if b == nil {
		return -1
	}
	return device.Location(b.Group<<8 | b.Binding)
}

func locationOf(b *ir.Binding) (uint32, bool) {
	if b == nil {
		return 0, false
	}
	switch lb := (*b).(type) {
	case ir.LocationBinding:
		return lb.Location, true
	case *ir.LocationBinding:
		return lb.Location, true
	}
	return 0, false
}

// attributes collects the @location inputs of a vertex entry point, both
// plain arguments and members of struct arguments, ordered by location.
func attributes(m *ir.Module, fn *ir.Function) []device.Attribute {
	if fn == nil {
		return nil
	}
	var attrs []device.Attribute
	add := func(name string, loc uint32, th ir.TypeHandle) {
		if int(th) >= len(m.Types) {
			return
		}
		base, container, ok := shape(m.Types[th].Inner)
		if !ok {
			return
		}
		attrs = append(attrs, device.Attribute{
			Name:      name,
			Location:  device.AttributeSlot(loc),
			Count:     1,
			BaseType:  base,
			Container: container,
		})
	}
	for _, arg := range fn.Arguments {
		if loc, ok := locationOf(arg.Binding); ok {
			add(arg.Name, loc, arg.Type)
			continue
		}
		if int(arg.Type) >= len(m.Types) {
			continue
		}
		if st, ok := m.Types[arg.Type].Inner.(ir.StructType); ok {
			for _, member := range st.Members {
				if loc, ok := locationOf(member.Binding); ok {
					add(member.Name, loc, member.Type)
				}
			}
		}
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Location < attrs[j].Location })
	return attrs
}

func baseType(s ir.ScalarType) device.BaseType {
	switch s.Kind {
	case ir.ScalarSint:
		return device.BaseI32
	case ir.ScalarUint:
		return device.BaseU32
	case ir.ScalarBool:
		return device.BaseBool
	}
	if s.Width == 8 {
		return device.BaseF64
	}
	return device.BaseF32
}

// shape maps a value type onto a base type and container.
func shape(inner ir.TypeInner) (device.BaseType, device.Container, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return baseType(t), device.Container{Kind: device.Single}, true
	case ir.VectorType:
		return baseType(t.Scalar), device.Container{Kind: device.Vector, Rows: uint8(t.Size)}, true
	case ir.MatrixType:
		return baseType(t.Scalar), device.Container{
			Kind: device.Matrix,
			Rows: uint8(t.Rows),
			Cols: uint8(t.Columns),
		}, true
	}
	return 0, device.Container{}, false
}
