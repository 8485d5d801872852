package headless_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/device/headless"
	"github.com/devblok/korender/render"
	"github.com/devblok/korender/render/mesh"
	"github.com/devblok/korender/render/rast"
	"github.com/devblok/korender/render/resource"
	"github.com/devblok/korender/render/shade"
	"github.com/devblok/korender/render/target"
	"github.com/sirupsen/logrus"
)

const vertexSource = `
struct VertexInput {
    @location(0) a_Pos: vec3<f32>,
    @location(1) a_Color: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

struct Globals {
    mvp: mat4x4<f32>,
}

@group(0) @binding(0) var<uniform> globals: Globals;

@vertex
fn vs_main(input: VertexInput) -> VertexOutput {
    var output: VertexOutput;
    output.position = globals.mvp * vec4<f32>(input.a_Pos, 1.0);
    output.color = input.a_Color;
    return output;
}
`

const fragmentSource = `
@group(0) @binding(1) var t_Color: texture_2d<f32>;
@group(0) @binding(2) var s_Color: sampler;

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color * textureSample(t_Color, s_Color, vec2<f32>(0.5, 0.5));
}
`

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.Out = io.Discard
	return logrus.NewEntry(logger)
}

func TestReflect(t *testing.T) {
	meta, err := headless.Reflect(vertexSource, fragmentSource)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %+v", meta.Attributes)
	}
	pos, color := meta.Attributes[0], meta.Attributes[1]
	if pos.Name != "a_Pos" || pos.Location != 0 || pos.BaseType != device.BaseF32 ||
		pos.Container.Kind != device.Vector || pos.Container.Rows != 3 {
		t.Errorf("unexpected position attribute %+v", pos)
	}
	if color.Name != "a_Color" || color.Location != 1 || color.Container.Rows != 4 {
		t.Errorf("unexpected color attribute %+v", color)
	}
	if len(meta.Blocks) != 1 || meta.Blocks[0].Name != "globals" {
		t.Errorf("unexpected blocks %+v", meta.Blocks)
	}
	if len(meta.Textures) != 1 || meta.Textures[0].Name != "t_Color" || !meta.Textures[0].Sampled {
		t.Errorf("unexpected textures %+v", meta.Textures)
	}
	if len(meta.Uniforms) != 0 {
		t.Errorf("unexpected uniforms %+v", meta.Uniforms)
	}
}

func TestReflectCompileError(t *testing.T) {
	_, err := headless.Reflect("fn broken( {", fragmentSource)
	var shaderErr *device.CreateShaderError
	if !errors.As(err, &shaderErr) {
		t.Fatalf("expected *CreateShaderError, got %v", err)
	}
	if shaderErr.Kind != device.ShaderCompilationFailed || shaderErr.Log == "" {
		t.Fatalf("unexpected error %+v", shaderErr)
	}
}

func TestReflectWrongStage(t *testing.T) {
	_, err := headless.Reflect(fragmentSource, fragmentSource)
	var shaderErr *device.CreateShaderError
	if !errors.As(err, &shaderErr) || shaderErr.Kind != device.ShaderModelNotSupported {
		t.Fatalf("expected unsupported shader model, got %v", err)
	}
}

type rig struct {
	dev  *headless.Device
	r    *render.Renderer
	reqs chan device.Request
	done chan error
}

func newRig(t *testing.T) *rig {
	reqs := make(chan device.Request, 64)
	replies := make(chan device.Reply, 64)
	acks := make(chan device.Ack, 1)
	dev := headless.New(headless.Configuration{CompileWorkers: 2, Logger: quietLogger()}, reqs, replies, acks)

	done := make(chan error, 1)
	go func() { done <- dev.Run(context.Background()) }()

	r := render.New(reqs, replies, acks, core.NewShouldClose(), render.Configuration{Logger: quietLogger()})
	return &rig{dev: dev, r: r, reqs: reqs, done: done}
}

func (g *rig) stop(t *testing.T) {
	close(g.reqs)
	select {
	case err := <-g.done:
		if err != nil {
			t.Fatalf("device stopped with %s", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("device did not stop")
	}
}

func TestRendererDrawsOnHeadlessDevice(t *testing.T) {
	g := newRig(t)
	r := g.r

	prog, err := r.CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		t.Fatal(err)
	}
	params := shade.NewParamSet()
	params.Blocks["globals"] = r.CreateBuffer(device.Float32Blob(make([]float32, 16)))
	params.Textures["t_Color"] = shade.TextureParam{Texture: r.CreateTexture(device.NewTextureInfo(2, 2))}
	bundle, err := r.BundleProgram(prog, params)
	if err != nil {
		t.Fatal(err)
	}

	format := mesh.Format{
		Stride: 16,
		Attributes: []mesh.AttributeFormat{
			{Name: "a_Pos", ElemCount: 3, ElemType: device.FloatType(device.FloatDefault, device.F32)},
			{Name: "a_Color", ElemCount: 4, ElemType: device.IntType(device.IntNormalized, device.U8, device.Unsigned), Offset: 12},
		},
	}
	m := r.CreateMesh(device.BytesBlob(make([]byte, 48)), 3, format)

	if err := r.Clear(device.ClearData{}, target.NewFrame(64, 64)); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(m, nil, target.NewFrame(64, 64), bundle, rast.NewDrawState()); err != nil {
		t.Fatal(err)
	}
	r.EndFrame()

	stats := g.dev.Stats()
	if stats.Draws != 1 || stats.Frames != 1 || stats.Clears != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Warnings != 0 {
		t.Errorf("%d warnings", stats.Warnings)
	}
	if errs := r.Errors(); len(errs) != 0 {
		t.Errorf("unexpected device errors %v", errs)
	}
	g.stop(t)
}

func TestHeadlessFailures(t *testing.T) {
	g := newRig(t)
	r := g.r

	tex := r.CreateTexture(device.NewTextureInfo(0, 4))
	if _, err := r.TexturePlane(tex, 0); !errors.Is(err, headless.ErrZeroExtent) {
		t.Fatalf("expected ErrZeroExtent, got %v", err)
	}

	_, err := r.CreateProgram("fn broken( {", fragmentSource)
	var shaderErr *device.CreateShaderError
	if !errors.As(err, &shaderErr) {
		t.Fatalf("expected a shader error, got %v", err)
	}

	errs := r.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected texture and shader errors, got %v", errs)
	}
	g.stop(t)
}

func TestCreateOutrunsReplyReader(t *testing.T) {
	reqs := make(chan device.Request, 16)
	replies := make(chan device.Reply, 16)
	acks := make(chan device.Ack, 1)
	dev := headless.New(headless.Configuration{Logger: quietLogger()}, reqs, replies, acks)

	done := make(chan error, 1)
	go func() { done <- dev.Run(context.Background()) }()
	r := render.New(reqs, replies, acks, core.NewShouldClose(), render.Configuration{Logger: quietLogger()})

	const count = 200
	created := make(chan resource.BufferHandle)
	go func() {
		var last resource.BufferHandle
		for i := 0; i < count; i++ {
			last = r.CreateBuffer(nil)
		}
		created <- last
	}()

	var last resource.BufferHandle
	select {
	case last = <-created:
	case <-time.After(5 * time.Second):
		t.Fatal("creating buffers blocked on unread replies")
	}
	if err := r.UpdateBuffer(last, nil); err != nil {
		t.Fatal(err)
	}
	if errs := r.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected device errors %v", errs)
	}

	close(reqs)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("device stopped with %s", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("device did not stop")
	}
	if stats := dev.Stats(); stats.Warnings != 0 {
		t.Errorf("%d warnings", stats.Warnings)
	}
}

func TestUnknownShaderInProgram(t *testing.T) {
	reqs := make(chan device.Request, 1)
	replies := make(chan device.Reply, 1)
	acks := make(chan device.Ack, 1)
	dev := headless.New(headless.Configuration{Logger: quietLogger()}, reqs, replies, acks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dev.Run(ctx) }()

	reqs <- device.Call{Token: 3, Command: device.CreateProgram{Shaders: []device.Shader{42}}}
	reply := <-replies
	resp, ok := reply.Response.(device.ProgramReply)
	if !ok || reply.Token != 3 {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if !errors.Is(resp.Err, headless.ErrUnknownShader) {
		t.Fatalf("expected ErrUnknownShader, got %v", resp.Err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := <-replies; ok {
		t.Fatal("replies should be closed")
	}
}
