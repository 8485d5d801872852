package device

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// TextureInfo describes a texture to create.
type TextureInfo struct {
	Size      gputypes.Extent3D
	Levels    uint8
	Dimension gputypes.TextureDimension
	Format    gputypes.TextureFormat
}

// NewTextureInfo returns a single-level 2D RGBA texture description.
func NewTextureInfo(width, height uint32) TextureInfo {
	return TextureInfo{
		Size: gputypes.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Levels:    1,
		Dimension: gputypes.TextureDimension2D,
		Format:    gputypes.TextureFormatRGBA8Unorm,
	}
}

// ImageInfo returns the description of the whole first level.
func (t TextureInfo) ImageInfo() ImageInfo {
	return ImageInfo{Size: t.Size, Format: t.Format}
}

// ImageInfo describes a region of a texture to update.
type ImageInfo struct {
	XOffset, YOffset, ZOffset uint32
	Size                      gputypes.Extent3D
	Format                    gputypes.TextureFormat
	Level                     uint8
}

// SamplerInfo describes a sampler to create.
type SamplerInfo struct {
	MagFilter     gputypes.FilterMode
	MinFilter     gputypes.FilterMode
	Wrap          [3]gputypes.AddressMode
	LodBias       float32
	LodMin        float32
	LodMax        float32
	MaxAnisotropy uint8
}

// NewSamplerInfo returns a linear, edge-clamped sampler description.
func NewSamplerInfo() SamplerInfo {
	return SamplerInfo{
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeLinear,
		Wrap: [3]gputypes.AddressMode{
			gputypes.AddressModeClampToEdge,
			gputypes.AddressModeClampToEdge,
			gputypes.AddressModeClampToEdge,
		},
		LodMax: 1000,
	}
}

// ImageBlob draws img onto a tightly packed RGBA canvas and returns the
// pixels along with the matching texture and region descriptions.
func ImageBlob(img image.Image) (BytesBlob, TextureInfo, ImageInfo) {
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)

	info := NewTextureInfo(uint32(bounds.Dx()), uint32(bounds.Dy()))
	return BytesBlob(canvas.Pix), info, info.ImageInfo()
}
