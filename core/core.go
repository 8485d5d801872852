package core

import "sync/atomic"

// ShouldClose is a flag shared between the window event loop and the
// render loop. The event loop raises it, the render loop polls it once per
// frame.
type ShouldClose struct {
	flag int32
}

// NewShouldClose creates a lowered flag.
func NewShouldClose() *ShouldClose {
	return &ShouldClose{}
}

// Close raises the flag. It can not be lowered again.
func (s *ShouldClose) Close() {
	atomic.StoreInt32(&s.flag, 1)
}

// Check reports whether the flag was raised.
func (s *ShouldClose) Check() bool {
	return atomic.LoadInt32(&s.flag) == 1
}

// ShaderType represents the type of shader that's loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)
