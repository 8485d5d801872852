package model

import (
	"unsafe"

	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render"
	"github.com/devblok/korender/render/mesh"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Object represents the engine supported model
type Object interface {

	// SetPosition sets the object's current position in space.
	// Has to be thread-safe
	SetPosition(glm.Mat4)

	// Position gets the object's current position in space.
	// Has to be thread-safe
	Position() glm.Mat4

	// SetRotation sets the object's rotation matrix.
	// Has to be thread-safe
	SetRotation(glm.Mat4)

	// Rotation gets the object's rotation matrix.
	// Has to be thread-safe
	Rotation() glm.Mat4

	// Vertices returns the vertices for Renderer use,
	// so it has to match VertexFormat exactly
	Vertices() []Vertex
}

// Vertex is a model vertex
type Vertex struct {
	Pos   glm.Vec3
	Color glm.Vec4
}

// Uniform defines a model-view-projection object
type Uniform struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

// MVP is the combined transform.
func (u Uniform) MVP() glm.Mat4 {
	return u.Projection.Mul4(u.View).Mul4(u.Model)
}

// Blob packs the combined transform the way shaders read a mat4x4 block.
func (u Uniform) Blob() device.Float32Blob {
	mvp := u.MVP()
	return device.Float32Blob(mvp[:])
}

// Vertex attribute names expected by shaders.
const (
	PositionAttribute = "a_Pos"
	ColorAttribute    = "a_Color"
)

// VertexFormat describes Vertex inside a vertex buffer.
var VertexFormat = mesh.Format{
	Stride: device.AttribStride(unsafe.Sizeof(Vertex{})),
	Attributes: []mesh.AttributeFormat{
		{
			Name:      PositionAttribute,
			ElemCount: 3,
			ElemType:  device.FloatType(device.FloatDefault, device.F32),
			Offset:    device.AttribOffset(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Name:      ColorAttribute,
			ElemCount: 4,
			ElemType:  device.FloatType(device.FloatDefault, device.F32),
			Offset:    device.AttribOffset(unsafe.Offsetof(Vertex{}.Color)),
		},
	},
}

// VertexBlob packs vertices for a vertex buffer.
func VertexBlob(vertices []Vertex) device.Float32Blob {
	blob := make(device.Float32Blob, 0, len(vertices)*7)
	for _, v := range vertices {
		blob = append(blob, v.Pos[:]...)
		blob = append(blob, v.Color[:]...)
	}
	return blob
}

// Upload creates a mesh holding the object's vertices.
func Upload(r *render.Renderer, obj Object) *mesh.Mesh {
	vertices := obj.Vertices()
	return r.CreateMesh(VertexBlob(vertices), device.VertexCount(len(vertices)), VertexFormat)
}
