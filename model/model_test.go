package model_test

import (
	"errors"
	"io"
	"testing"

	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/model"
	"github.com/devblok/korender/render"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
)

const triangle = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <library_geometries>
    <geometry id="Tri-mesh" name="Tri">
      <mesh>
        <source id="Tri-mesh-positions">
          <float_array id="Tri-mesh-positions-array" count="9">0 0 0 1 0 0 0 1 0</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-positions-array" count="3" stride="3"/>
          </technique_common>
        </source>
        <source id="Tri-mesh-normals">
          <float_array id="Tri-mesh-normals-array" count="3">0 0 1</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-normals-array" count="1" stride="3"/>
          </technique_common>
        </source>
        <vertices id="Tri-mesh-vertices">
          <input semantic="POSITION" source="#Tri-mesh-positions"/>
        </vertices>
        <triangles material="Material-material" count="1">
          <input semantic="VERTEX" source="#Tri-mesh-vertices" offset="0"/>
          <input semantic="NORMAL" source="#Tri-mesh-normals" offset="1"/>
          <p>0 0 1 0 2 0</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
</COLLADA>`

func TestImportColladaObject(t *testing.T) {
	obj, err := model.ImportColladaObject([]byte(triangle))
	if err != nil {
		t.Fatal(err)
	}
	vertices := obj.Vertices()
	if len(vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(vertices))
	}
	if vertices[1].Pos != (glm.Vec3{1, 0, 0}) || vertices[2].Pos != (glm.Vec3{0, 1, 0}) {
		t.Errorf("unexpected positions %v", vertices)
	}
	if vertices[0].Color != (glm.Vec4{0.5, 0.5, 1, 1}) {
		t.Errorf("unexpected color %v", vertices[0].Color)
	}
	if obj.Position() != glm.Ident4() || obj.Rotation() != glm.Ident4() {
		t.Error("new objects sit at the origin")
	}

	rot := glm.HomogRotate3DZ(1)
	obj.SetRotation(rot)
	if obj.Rotation() != rot || obj.Position() != glm.Ident4() {
		t.Error("rotation overwrote position")
	}
	if model.Transform(obj) != rot {
		t.Error("unexpected transform")
	}
}

func TestImportColladaErrors(t *testing.T) {
	if _, err := model.ImportColladaObject([]byte(`<COLLADA></COLLADA>`)); !errors.Is(err, model.ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
	if _, err := model.ImportColladaObject([]byte(`<COLLADA`)); err == nil {
		t.Error("broken xml accepted")
	}
}

func TestVertexFormat(t *testing.T) {
	if model.VertexFormat.Stride != 28 {
		t.Fatalf("stride is %d", model.VertexFormat.Stride)
	}
	if off := model.VertexFormat.Attributes[1].Offset; off != 12 {
		t.Fatalf("color offset is %d", off)
	}
	blob := model.VertexBlob([]model.Vertex{{Pos: glm.Vec3{1, 2, 3}, Color: glm.Vec4{4, 5, 6, 7}}})
	if len(blob.Bytes()) != int(model.VertexFormat.Stride) {
		t.Fatalf("vertex packs to %d bytes", len(blob.Bytes()))
	}
	if blob[3] != 4 {
		t.Errorf("unexpected layout %v", blob)
	}
}

func TestUniformBlob(t *testing.T) {
	u := model.Uniform{Model: glm.Translate3D(1, 2, 3), View: glm.Ident4(), Projection: glm.Ident4()}
	blob := u.Blob()
	if len(blob) != 16 || blob[12] != 1 || blob[14] != 3 {
		t.Fatalf("unexpected block %v", blob)
	}
}

func TestUpload(t *testing.T) {
	logger := logrus.New()
	logger.Out = io.Discard
	requests := make(chan device.Request, 8)
	r := render.New(requests, make(chan device.Reply), make(chan device.Ack), core.NewShouldClose(),
		render.Configuration{Logger: logrus.NewEntry(logger)})

	obj, err := model.ImportColladaObject([]byte(triangle))
	if err != nil {
		t.Fatal(err)
	}
	m := model.Upload(r, obj)
	if m.NumVertices != 3 {
		t.Fatalf("mesh has %d vertices", m.NumVertices)
	}
	if _, ok := m.Attribute(model.ColorAttribute); !ok {
		t.Fatal("color attribute missing")
	}

	<-requests
	<-requests
	call, ok := (<-requests).(device.Call)
	if !ok {
		t.Fatal("expected a call")
	}
	create, ok := call.Command.(device.CreateBuffer)
	if !ok || len(create.Data.Bytes()) != 3*28 {
		t.Fatalf("unexpected buffer creation %+v", call.Command)
	}
}
