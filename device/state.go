package device

import "github.com/gogpu/gputypes"

// RasterMethod is how primitives are rasterized.
type RasterMethod int

// Rasterization methods
const (
	RasterFill RasterMethod = iota
	RasterLine
	RasterPoint
)

// Offset is a polygon depth offset.
type Offset struct {
	Factor float32
	Units  int32
}

// Primitive is the rasterizer state.
type Primitive struct {
	Topology  gputypes.PrimitiveTopology
	FrontFace gputypes.FrontFace
	Method    RasterMethod
	// LineWidth applies to RasterLine only.
	LineWidth float32
	// Cull applies to RasterFill only.
	Cull   gputypes.CullMode
	Offset *Offset
}

// CullMode returns the effective face culling. Only filled primitives
// have faces to cull.
func (p Primitive) CullMode() gputypes.CullMode {
	if p.Method == RasterFill {
		return p.Cull
	}
	return gputypes.CullModeNone
}

// Depth is the depth test state.
type Depth struct {
	Func  gputypes.CompareFunction
	Write bool
}

// StencilOp is what happens to a stencil value.
type StencilOp int

// Stencil operations
const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrementClamp
	StencilIncrementWrap
	StencilDecrementClamp
	StencilDecrementWrap
	StencilInvert
)

// StencilSide is the stencil state for one face orientation.
type StencilSide struct {
	Func        gputypes.CompareFunction
	Value       uint8
	MaskRead    uint8
	MaskWrite   uint8
	OpFail      StencilOp
	OpDepthFail StencilOp
	OpPass      StencilOp
}

// Stencil is the stencil test state.
type Stencil struct {
	Front StencilSide
	Back  StencilSide
}
