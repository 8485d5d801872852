package shade

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devblok/korender/device"
)

// ErrBadProgram is returned when a program failed to link on the device.
var ErrBadProgram = errors.New("shade: program is not usable")

// ParamKind tells which list of a program a parameter belongs to.
type ParamKind int

// Parameter kinds
const (
	ParamUniform ParamKind = iota
	ParamBlock
	ParamTexture
)

func (k ParamKind) String() string {
	switch k {
	case ParamUniform:
		return "uniform"
	case ParamBlock:
		return "block"
	case ParamTexture:
		return "texture"
	}
	return "unknown"
}

// UnusedParameterError means a parameter object binds a name the program
// does not declare.
type UnusedParameterError struct {
	Kind ParamKind
	Name string
}

func (e *UnusedParameterError) Error() string {
	return fmt.Sprintf("%s %q is not used by the program", e.Kind, e.Name)
}

// MissingParameterError lists program variables nobody provided.
type MissingParameterError struct {
	Uniforms []string
	Blocks   []string
	Textures []string
}

func (e *MissingParameterError) Error() string {
	var parts []string
	if len(e.Uniforms) > 0 {
		parts = append(parts, "uniforms "+strings.Join(e.Uniforms, ", "))
	}
	if len(e.Blocks) > 0 {
		parts = append(parts, "blocks "+strings.Join(e.Blocks, ", "))
	}
	if len(e.Textures) > 0 {
		parts = append(parts, "textures "+strings.Join(e.Textures, ", "))
	}
	return "missing " + strings.Join(parts, "; ")
}

// LinkErrorKind classifies a ParameterLinkError.
type LinkErrorKind int

// Link failures
const (
	LinkBadProgram LinkErrorKind = iota
	LinkUnusedParameter
	LinkMissingParameter
)

// ParameterLinkError is returned when a parameter object cannot be
// bundled with a program.
type ParameterLinkError struct {
	Kind LinkErrorKind
	Err  error
}

func (e *ParameterLinkError) Error() string {
	return "shade: parameter link: " + e.Err.Error()
}

func (e *ParameterLinkError) Unwrap() error {
	return e.Err
}

// MetaSink is a ParameterSink that remembers which program variables were
// asked for, so it can tell afterwards whether any were left out.
type MetaSink struct {
	meta     device.ProgramMeta
	uniforms []bool
	blocks   []bool
	textures []bool
}

// NewMetaSink creates a sink seeded with the program's variables.
func NewMetaSink(meta device.ProgramMeta) *MetaSink {
	return &MetaSink{
		meta:     meta,
		uniforms: make([]bool, len(meta.Uniforms)),
		blocks:   make([]bool, len(meta.Blocks)),
		textures: make([]bool, len(meta.Textures)),
	}
}

// FindUniform implements ParameterSink
func (s *MetaSink) FindUniform(name string) (VarUniform, bool) {
	for i, u := range s.meta.Uniforms {
		if u.Name == name {
			s.uniforms[i] = true
			return VarUniform(i), true
		}
	}
	return 0, false
}

// FindBlock implements ParameterSink
func (s *MetaSink) FindBlock(name string) (VarBlock, bool) {
	for i, b := range s.meta.Blocks {
		if b.Name == name {
			s.blocks[i] = true
			return VarBlock(i), true
		}
	}
	return 0, false
}

// FindTexture implements ParameterSink
func (s *MetaSink) FindTexture(name string) (VarTexture, bool) {
	for i, t := range s.meta.Textures {
		if t.Name == name {
			s.textures[i] = true
			return VarTexture(i), true
		}
	}
	return 0, false
}

// Complete checks that every program variable has been found.
func (s *MetaSink) Complete() error {
	var missing MissingParameterError
	for i, found := range s.uniforms {
		if !found {
			missing.Uniforms = append(missing.Uniforms, s.meta.Uniforms[i].Name)
		}
	}
	for i, found := range s.blocks {
		if !found {
			missing.Blocks = append(missing.Blocks, s.meta.Blocks[i].Name)
		}
	}
	for i, found := range s.textures {
		if !found {
			missing.Textures = append(missing.Textures, s.meta.Textures[i].Name)
		}
	}
	if missing.Uniforms == nil && missing.Blocks == nil && missing.Textures == nil {
		return nil
	}
	return &missing
}
