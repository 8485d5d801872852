// Package rast holds the fixed-function state of a draw call.
package rast

import (
	"github.com/devblok/korender/device"
	"github.com/gogpu/gputypes"
)

// DrawState is everything about a draw call that is not a resource.
type DrawState struct {
	Primitive device.Primitive
	Depth     *device.Depth
	Stencil   *device.Stencil
	Blend     *gputypes.BlendState
}

// NewDrawState returns filled triangles with no culling, depth test,
// stencil test or blending.
func NewDrawState() DrawState {
	return DrawState{
		Primitive: device.Primitive{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			Method:   device.RasterFill,
			Cull:     gputypes.CullModeNone,
		},
	}
}

// WithDepth returns a copy with the depth test enabled.
func (s DrawState) WithDepth(fn gputypes.CompareFunction, write bool) DrawState {
	s.Depth = &device.Depth{Func: fn, Write: write}
	return s
}

// WithStencil returns a copy using the same stencil state for both faces.
func (s DrawState) WithStencil(side device.StencilSide) DrawState {
	s.Stencil = &device.Stencil{Front: side, Back: side}
	return s
}

// WithBlend returns a copy with blending enabled.
func (s DrawState) WithBlend(blend gputypes.BlendState) DrawState {
	s.Blend = &blend
	return s
}

// WithCull returns a copy culling the given faces of filled primitives.
func (s DrawState) WithCull(mode gputypes.CullMode) DrawState {
	s.Primitive.Cull = mode
	return s
}
