package device

import (
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Stage is the pipeline stage a shader runs at.
type Stage int

// Shader stages
const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

// Source is the WGSL text of a single shader stage.
type Source string

// ShaderErrorKind classifies a failed shader creation.
type ShaderErrorKind int

// Shader creation failures
const (
	ShaderModelNotSupported ShaderErrorKind = iota
	ShaderCompilationFailed
)

// CreateShaderError is reported when the device cannot create a shader.
type CreateShaderError struct {
	Kind ShaderErrorKind
	Log  string
}

func (e *CreateShaderError) Error() string {
	if e.Kind == ShaderModelNotSupported {
		return "shader model not supported"
	}
	return fmt.Sprintf("shader compilation failed: %s", e.Log)
}

// BaseType is the scalar type a shader variable is made of.
type BaseType int

// Base types
const (
	BaseI32 BaseType = iota
	BaseU32
	BaseF32
	BaseF64
	BaseBool
)

// ContainerKind tells how base elements are arranged.
type ContainerKind int

// Containers
const (
	Single ContainerKind = iota
	Vector
	Matrix
)

// Container describes a variable's shape, e.g. a 4-vector or 4x4 matrix.
type Container struct {
	Kind ContainerKind
	Rows uint8
	Cols uint8
}

// Location is a uniform location inside a linked program.
type Location int32

// UniformValue is a value that can be stored in a plain uniform.
type UniformValue interface {
	isUniformValue()
}

// Uniform values
type (
	ValueI32       int32
	ValueF32       float32
	ValueI32Vector [4]int32
	ValueF32Vector glm.Vec4
	ValueF32Matrix glm.Mat4
)

func (ValueI32) isUniformValue()       {}
func (ValueF32) isUniformValue()       {}
func (ValueI32Vector) isUniformValue() {}
func (ValueF32Vector) isUniformValue() {}
func (ValueF32Matrix) isUniformValue() {}

// Attribute is a vertex input expected by a program.
type Attribute struct {
	Name      string
	Location  AttributeSlot
	Count     uint
	BaseType  BaseType
	Container Container
}

// UniformVar is a plain uniform declared by a program.
type UniformVar struct {
	Name      string
	Location  Location
	Count     uint
	BaseType  BaseType
	Container Container
}

// BlockVar is a uniform block declared by a program.
type BlockVar struct {
	Name string
	Size uint32
}

// SamplerVar is a texture declared by a program.
type SamplerVar struct {
	Name     string
	Location Location
	BaseType BaseType
	Sampled  bool
}

// ProgramMeta is everything the renderer needs to know about a linked
// program. Name is the device handle.
type ProgramMeta struct {
	Name       Program
	Attributes []Attribute
	Uniforms   []UniformVar
	Blocks     []BlockVar
	Textures   []SamplerVar
}
