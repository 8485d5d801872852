package device

import "github.com/gogpu/gputypes"

// TargetKind is the kind of frame buffer attachment point.
type TargetKind int

// Attachment points
const (
	TargetColor TargetKind = iota
	TargetDepth
	TargetStencil
)

// Target is an attachment point of a frame buffer.
type Target struct {
	Kind TargetKind
	// Slot is the color attachment index, zero otherwise.
	Slot uint8
}

// ColorTarget returns the i-th color attachment point.
func ColorTarget(i uint8) Target {
	return Target{Kind: TargetColor, Slot: i}
}

// Depth and stencil attachment points.
var (
	DepthTarget   = Target{Kind: TargetDepth}
	StencilTarget = Target{Kind: TargetStencil}
)

// PlaneKind is the kind of image an attachment refers to.
type PlaneKind int

// Plane kinds
const (
	PlaneEmpty PlaneKind = iota
	PlaneSurface
	PlaneTexture
	PlaneTextureLayer
)

// Plane is something a frame buffer attachment can point at. Planes are
// comparable, which the renderer relies on for diffing frames.
type Plane struct {
	Kind    PlaneKind
	Surface Surface
	Texture Texture
	Level   uint8
	Layer   uint16
}

// SurfacePlane returns a plane backed by a render surface.
func SurfacePlane(s Surface) Plane {
	return Plane{Kind: PlaneSurface, Surface: s}
}

// TexturePlane returns a plane backed by a texture mip level.
func TexturePlane(t Texture, level uint8) Plane {
	return Plane{Kind: PlaneTexture, Texture: t, Level: level}
}

// TextureLayerPlane returns a plane backed by one layer of a texture.
func TextureLayerPlane(t Texture, level uint8, layer uint16) Plane {
	return Plane{Kind: PlaneTextureLayer, Texture: t, Level: level, Layer: layer}
}

// ClearData describes what to clear and with which values. Nil fields
// are left untouched.
type ClearData struct {
	Color   *gputypes.Color
	Depth   *float32
	Stencil *uint8
}
