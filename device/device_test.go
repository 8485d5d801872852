package device_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/devblok/korender/device"
	"github.com/gogpu/gputypes"
)

func TestAttribCompatibility(t *testing.T) {
	cases := []struct {
		name string
		typ  device.AttribType
		base device.BaseType
		ok   bool
	}{
		{"raw int to i32", device.IntType(device.IntRaw, device.U32, device.Signed), device.BaseI32, true},
		{"raw unsigned to u32", device.IntType(device.IntRaw, device.U16, device.Unsigned), device.BaseU32, true},
		{"raw signed to u32", device.IntType(device.IntRaw, device.U16, device.Signed), device.BaseU32, false},
		{"raw int to f32", device.IntType(device.IntRaw, device.U8, device.Signed), device.BaseF32, false},
		{"normalized to f32", device.IntType(device.IntNormalized, device.U8, device.Unsigned), device.BaseF32, true},
		{"normalized to i32", device.IntType(device.IntNormalized, device.U8, device.Unsigned), device.BaseI32, false},
		{"float to f32", device.FloatType(device.FloatDefault, device.F32), device.BaseF32, true},
		{"float to f64", device.FloatType(device.FloatDefault, device.F64), device.BaseF64, false},
		{"double to f64", device.FloatType(device.FloatPrecision, device.F64), device.BaseF64, true},
		{"float to bool", device.FloatType(device.FloatDefault, device.F32), device.BaseBool, false},
	}
	for _, c := range cases {
		err := c.typ.IsCompatible(c.base)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %s", c.name, err)
		}
		if !c.ok && !errors.Is(err, device.ErrIncompatibleAttribute) {
			t.Errorf("%s: expected ErrIncompatibleAttribute, got %v", c.name, err)
		}
	}
}

func TestAttribSize(t *testing.T) {
	if s := device.FloatType(device.FloatDefault, device.F32).Size(); s != 4 {
		t.Errorf("f32 size is %d", s)
	}
	if s := device.IntType(device.IntRaw, device.U16, device.Unsigned).Size(); s != 2 {
		t.Errorf("u16 size is %d", s)
	}
	if s := device.IntType(device.IntRaw, device.IntSize(200), device.Unsigned).Size(); s != 0 {
		t.Errorf("unknown int size is %d", s)
	}
	if s := device.FloatType(device.FloatDefault, device.FloatSize(200)).Size(); s != 0 {
		t.Errorf("unknown float size is %d", s)
	}
}

func TestBlobs(t *testing.T) {
	if got := (device.Float32Blob{1}).Bytes(); !bytes.Equal(got, []byte{0, 0, 0x80, 0x3f}) {
		t.Errorf("unexpected float bytes % x", got)
	}
	if got := (device.Uint16Blob{1, 0x0203}).Bytes(); !bytes.Equal(got, []byte{1, 0, 3, 2}) {
		t.Errorf("unexpected index bytes % x", got)
	}

	type globals struct {
		Time  float32
		Frame uint32
	}
	blob, err := device.StructBlob(globals{Time: 1, Frame: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(blob, []byte{0, 0, 0x80, 0x3f, 2, 0, 0, 0}) {
		t.Errorf("unexpected struct bytes % x", blob.Bytes())
	}
	if _, err := device.StructBlob(map[string]int{}); err == nil {
		t.Error("maps can not be encoded")
	}
}

func TestPrimitiveCullMode(t *testing.T) {
	p := device.Primitive{Method: device.RasterFill, Cull: gputypes.CullModeBack}
	if p.CullMode() != gputypes.CullModeBack {
		t.Error("filled primitives keep their cull mode")
	}
	p.Method = device.RasterPoint
	if p.CullMode() != gputypes.CullModeNone {
		t.Error("points are never culled")
	}
}

func TestImageBlob(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 3, 4, 4))
	img.Set(2, 3, color.NRGBA{R: 255, A: 255})
	img.Set(3, 3, color.NRGBA{G: 255, A: 255})

	pix, info, region := device.ImageBlob(img)
	if info.Size.Width != 2 || info.Size.Height != 1 || info.Size.DepthOrArrayLayers != 1 {
		t.Fatalf("unexpected size %+v", info.Size)
	}
	if region.Size != info.Size || region.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Fatalf("unexpected region %+v", region)
	}
	if !bytes.Equal(pix, []byte{255, 0, 0, 255, 0, 255, 0, 255}) {
		t.Fatalf("unexpected pixels % x", []byte(pix))
	}
}

func TestPlanesCompare(t *testing.T) {
	if device.TexturePlane(1, 0) == device.TexturePlane(1, 1) {
		t.Error("levels differ")
	}
	if device.TextureLayerPlane(1, 0, 2) != device.TextureLayerPlane(1, 0, 2) {
		t.Error("same layer")
	}
	if (device.Plane{}).Kind != device.PlaneEmpty {
		t.Error("zero plane should be empty")
	}
}
