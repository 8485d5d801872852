// Package target describes where draw calls end up.
package target

import "github.com/devblok/korender/device"

// MaxColorTargets is the number of color attachments a Frame can have.
const MaxColorTargets = 4

// Frame is a set of planes to render into. A frame without any plane is
// the default frame, owned by the window system.
type Frame struct {
	Width   uint16
	Height  uint16
	Colors  [MaxColorTargets]device.Plane
	Depth   device.Plane
	Stencil device.Plane
}

// NewFrame returns the default frame with the given size.
func NewFrame(width, height uint16) Frame {
	return Frame{Width: width, Height: height}
}

// IsDefault reports whether the frame refers to the default target.
func (f Frame) IsDefault() bool {
	for _, c := range f.Colors {
		if c.Kind != device.PlaneEmpty {
			return false
		}
	}
	return f.Depth.Kind == device.PlaneEmpty && f.Stencil.Kind == device.PlaneEmpty
}
