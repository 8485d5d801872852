// Package mesh describes vertex data living in device buffers.
package mesh

import (
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render/resource"
)

// Attribute is a named vertex input stored in a buffer.
type Attribute struct {
	Name      string
	Buffer    resource.BufferHandle
	ElemCount device.AttribCount
	ElemType  device.AttribType
	Stride    device.AttribStride
	Offset    device.AttribOffset
}

// AttributeFormat is an Attribute without a buffer: the layout of one
// field of a vertex type.
type AttributeFormat struct {
	Name      string
	ElemCount device.AttribCount
	ElemType  device.AttribType
	Offset    device.AttribOffset
}

// Format is the layout of one vertex type, interleaved in a single buffer.
type Format struct {
	Stride     device.AttribStride
	Attributes []AttributeFormat
}

// Mesh is a set of vertex attributes sharing a vertex count.
type Mesh struct {
	NumVertices device.VertexCount
	Attributes  []Attribute
}

// New builds a mesh whose attributes all live in buf, laid out by format.
func New(buf resource.BufferHandle, nv device.VertexCount, format Format) *Mesh {
	m := &Mesh{NumVertices: nv}
	for _, af := range format.Attributes {
		m.Attributes = append(m.Attributes, Attribute{
			Name:      af.Name,
			Buffer:    buf,
			ElemCount: af.ElemCount,
			ElemType:  af.ElemType,
			Stride:    format.Stride,
			Offset:    af.Offset,
		})
	}
	return m
}

// Attribute finds an attribute by name.
func (m *Mesh) Attribute(name string) (Attribute, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Slice returns a slice covering every vertex of the mesh.
func (m *Mesh) Slice() Slice {
	return VertexSlice{Start: 0, End: m.NumVertices}
}

// Slice is the range of a mesh to draw: a VertexSlice or an IndexSlice.
type Slice interface {
	isSlice()
}

// VertexSlice draws vertices [Start, End) in order.
type VertexSlice struct {
	Start, End device.VertexCount
}

// IndexSlice draws indices [Start, End) read from Buffer.
type IndexSlice struct {
	Buffer     resource.BufferHandle
	Start, End device.IndexCount
}

func (VertexSlice) isSlice() {}
func (IndexSlice) isSlice()  {}
