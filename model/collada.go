package model

import (
	"encoding/xml"
	"errors"
	"fmt"
	"sync"

	"github.com/devblok/korender/util/collada"
	glm "github.com/go-gl/mathgl/mgl32"
)

// package errors
var (
	ErrNoGeometry = errors.New("collada document has no geometry")
	ErrNoPosition = errors.New("collada mesh has no vertex positions")
	ErrBadIndex   = errors.New("collada index out of range")
)

// DefaultColor is given to vertices without a normal.
var DefaultColor = glm.Vec4{1.0, 1.0, 0.0, 1.0}

// ImportColladaObject reads given file and converts the first Collada
// geometry to engine's internal object. Vertices are colored by their
// normal when the mesh has normals.
func ImportColladaObject(fileContents []byte) (Object, error) {
	var colladaModel collada.Collada
	if err := xml.Unmarshal(fileContents, &colladaModel); err != nil {
		return nil, err
	}
	if len(colladaModel.Geometries) == 0 {
		return nil, ErrNoGeometry
	}

	mesh := &colladaModel.Geometries[0].Mesh
	tris := &mesh.Triangles

	vertexInput, ok := tris.Input(collada.SemanticVertex)
	if !ok {
		return nil, ErrNoPosition
	}
	posInput, ok := mesh.Vertices.Input(collada.SemanticPosition)
	if !ok {
		return nil, ErrNoPosition
	}
	positions, err := mesh.Source(posInput.Source)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals *collada.Source
	normalInput, hasNormals := tris.Input(collada.SemanticNormal)
	if hasNormals {
		if normals, err = mesh.Source(normalInput.Source); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}

	stride := tris.Stride()
	vertices := make([]Vertex, 0, len(tris.Index)/stride)
	for idx := 0; idx+stride <= len(tris.Index); idx += stride {
		indices := tris.Index[idx : idx+stride]

		pos, ok := positions.Element(indices[vertexInput.Offset])
		if !ok || len(pos) < 3 {
			return nil, fmt.Errorf("%w: position %d", ErrBadIndex, indices[vertexInput.Offset])
		}
		vert := Vertex{Pos: glm.Vec3{pos[0], pos[1], pos[2]}, Color: DefaultColor}

		if normals != nil {
			n, ok := normals.Element(indices[normalInput.Offset])
			if !ok || len(n) < 3 {
				return nil, fmt.Errorf("%w: normal %d", ErrBadIndex, indices[normalInput.Offset])
			}
			c := glm.Vec3{n[0], n[1], n[2]}.Mul(0.5).Add(glm.Vec3{0.5, 0.5, 0.5})
			vert.Color = c.Vec4(1.0)
		}
		vertices = append(vertices, vert)
	}

	return NewObject(vertices), nil
}

// NewObject creates an object at the origin.
func NewObject(vertices []Vertex) *StaticObject {
	return &StaticObject{
		position: glm.Ident4(),
		rotation: glm.Ident4(),
		vertices: vertices,
	}
}

// StaticObject is loaded and held in memory, its vertices never change.
type StaticObject struct {
	mutex    sync.RWMutex
	position glm.Mat4
	rotation glm.Mat4

	vertices []Vertex
}

// SetPosition implements interface
func (o *StaticObject) SetPosition(pos glm.Mat4) {
	o.mutex.Lock()
	o.position = pos
	o.mutex.Unlock()
}

// Position implements interface
func (o *StaticObject) Position() glm.Mat4 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.position
}

// SetRotation implements interface
func (o *StaticObject) SetRotation(rot glm.Mat4) {
	o.mutex.Lock()
	o.rotation = rot
	o.mutex.Unlock()
}

// Rotation implements interface
func (o *StaticObject) Rotation() glm.Mat4 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.rotation
}

// Vertices implements interface
func (o *StaticObject) Vertices() []Vertex {
	return o.vertices
}

// Transform is the model matrix, rotation applied first.
func Transform(obj Object) glm.Mat4 {
	return obj.Position().Mul4(obj.Rotation())
}
