// Package render translates draw calls into device commands.
//
// The Renderer runs on a single goroutine and talks to a device worker
// over three channels: requests, replies and acks. Resources are created
// asynchronously; the renderer only blocks on a reply when a later command
// needs the device handle it carries.
package render

import (
	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render/mesh"
	"github.com/devblok/korender/render/rast"
	"github.com/devblok/korender/render/resource"
	"github.com/devblok/korender/render/shade"
	"github.com/devblok/korender/render/target"
	"github.com/sirupsen/logrus"
)

// Configuration of a Renderer.
type Configuration struct {
	// DefaultFrameBuffer is bound for frames without planes.
	DefaultFrameBuffer device.FrameBuffer
	Logger             *logrus.Entry
}

// Renderer turns draw calls into device commands.
type Renderer struct {
	dispatcher   *Dispatcher
	requests     chan<- device.Request
	acks         <-chan device.Ack
	shouldFinish *core.ShouldClose
	log          *logrus.Entry

	defaultFrameBuffer device.FrameBuffer
	// attachments of the common frame buffer
	frame target.Frame
}

// New creates a renderer and asks the device for the array buffer and
// frame buffer shared by all draw calls.
func New(requests chan<- device.Request, replies <-chan device.Reply, acks <-chan device.Ack,
	shouldFinish *core.ShouldClose, cfg Configuration) *Renderer {
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "renderer")

	cache := resource.NewCache()
	vao := cache.CreateSlot(resource.KindArrayBuffer)
	fbo := cache.CreateSlot(resource.KindFrameBuffer)
	requests <- device.Call{Token: vao, Command: device.CreateArrayBuffer{}}
	requests <- device.Call{Token: fbo, Command: device.CreateFrameBuffer{}}

	return &Renderer{
		dispatcher:         NewDispatcher(replies, cache, log),
		requests:           requests,
		acks:               acks,
		shouldFinish:       shouldFinish,
		log:                log,
		defaultFrameBuffer: cfg.DefaultFrameBuffer,
	}
}

func (r *Renderer) call(token device.Token, cmd device.CallRequest) {
	r.requests <- device.Call{Token: token, Command: cmd}
}

func (r *Renderer) cast(cmd device.CastRequest) {
	r.requests <- device.Cast{Command: cmd}
}

// Dispatcher returns the dispatcher resolving this renderer's resources.
func (r *Renderer) Dispatcher() *Dispatcher {
	return r.dispatcher
}

// ShouldFinish reports whether rendering should stop completely.
func (r *Renderer) ShouldFinish() bool {
	return r.shouldFinish != nil && r.shouldFinish.Check()
}

// Errors returns the device errors raised since the last call.
func (r *Renderer) Errors() []*DeviceError {
	return r.dispatcher.Errors()
}

// Clear clears the frame as data specifies.
func (r *Renderer) Clear(data device.ClearData, frame target.Frame) error {
	if err := r.bindFrame(frame); err != nil {
		return err
	}
	r.cast(device.Clear{Data: data})
	return nil
}

// Draw draws slice of m into frame using the bundle and draw state. A nil
// slice draws every vertex of the mesh.
//
// A failed draw may have cast state commands already: nothing was drawn,
// but device state could have changed.
func (r *Renderer) Draw(m *mesh.Mesh, slice mesh.Slice, frame target.Frame, bundle *shade.Bundle, state rast.DrawState) error {
	if slice == nil {
		slice = m.Slice()
	}
	if err := r.prebindMesh(m, slice); err != nil {
		return &DrawError{Kind: DrawMesh, Err: err}
	}
	r.prebindBundle(bundle)

	programs := &r.dispatcher.cache.Programs
	r.dispatcher.Demand(func(*resource.Cache) bool {
		return !programs.Get(bundle.Program()).IsPending()
	})
	slot := programs.Get(bundle.Program())
	var meta device.ProgramMeta
	switch slot.State() {
	case resource.Pending:
		return &DrawError{Kind: DrawProgram, Err: ErrProgramNotReady}
	case resource.Failed:
		return &DrawError{Kind: DrawProgram, Err: shade.ErrBadProgram}
	default:
		meta, _ = slot.Value()
	}

	r.cast(device.SetPrimitiveState{Primitive: state.Primitive})
	r.cast(device.SetDepthStencilState{
		Depth:   state.Depth,
		Stencil: state.Stencil,
		Cull:    state.Primitive.CullMode(),
	})
	r.cast(device.SetBlendState{Blend: state.Blend})

	vao, err := r.dispatcher.CommonArrayBuffer()
	if err != nil {
		return &DrawError{Kind: DrawResource, Err: err}
	}
	r.cast(device.BindArrayBuffer{ArrayBuffer: vao})

	if err := r.bindFrame(frame); err != nil {
		return &DrawError{Kind: DrawResource, Err: err}
	}
	if err := r.bindShaderBundle(meta, bundle); err != nil {
		return &DrawError{Kind: DrawBundle, Err: err}
	}
	if err := r.bindMesh(m, meta); err != nil {
		return &DrawError{Kind: DrawMesh, Err: err}
	}

	switch s := slice.(type) {
	case mesh.VertexSlice:
		r.cast(device.Draw{Start: s.Start, End: s.End})
	case mesh.IndexSlice:
		buf, _ := r.dispatcher.cache.Buffers.Get(s.Buffer).Value()
		r.cast(device.BindIndex{Buffer: buf})
		r.cast(device.DrawIndexed{Start: s.Start, End: s.End})
	}
	return nil
}

// EndFrame submits the frame and waits until the device has consumed one.
func (r *Renderer) EndFrame() {
	r.requests <- device.SwapBuffers{}
	if _, ok := <-r.acks; !ok {
		panic(ErrDeviceDisconnected)
	}
}

// CreateProgram compiles a vertex and a fragment shader and links them. It
// waits for both shaders, but not for the program itself.
func (r *Renderer) CreateProgram(vs, fs device.Source) (resource.ProgramHandle, error) {
	cache := r.dispatcher.cache
	vsToken := cache.CreateSlot(resource.KindShader)
	fsToken := cache.CreateSlot(resource.KindShader)
	r.call(vsToken, device.CreateShader{Stage: device.VertexStage, Source: vs})
	r.call(fsToken, device.CreateShader{Stage: device.FragmentStage, Source: fs})

	vsHandle, err := r.dispatcher.Shader(vsToken)
	if err != nil {
		return 0, err
	}
	fsHandle, err := r.dispatcher.Shader(fsToken)
	if err != nil {
		return 0, err
	}

	token := cache.CreateSlot(resource.KindProgram)
	r.call(token, device.CreateProgram{Shaders: []device.Shader{vsHandle, fsHandle}})
	return token, nil
}

// CreateBuffer creates a buffer for vertex, index or uniform data. data
// may be nil for an empty buffer.
func (r *Renderer) CreateBuffer(data device.Blob) resource.BufferHandle {
	token := r.dispatcher.cache.CreateSlot(resource.KindBuffer)
	r.call(token, device.CreateBuffer{Data: data})
	return token
}

// CreateMesh uploads vertices laid out by format into a new buffer.
func (r *Renderer) CreateMesh(data device.Blob, nv device.VertexCount, format mesh.Format) *mesh.Mesh {
	buf := r.CreateBuffer(data)
	return mesh.New(buf, nv, format)
}

// CreateTexture creates a texture described by info.
func (r *Renderer) CreateTexture(info device.TextureInfo) resource.TextureHandle {
	token := r.dispatcher.cache.CreateSlot(resource.KindTexture)
	r.call(token, device.CreateTexture{Info: info})
	return token
}

// CreateSampler creates a sampler described by info.
func (r *Renderer) CreateSampler(info device.SamplerInfo) resource.SamplerHandle {
	token := r.dispatcher.cache.CreateSlot(resource.KindSampler)
	r.call(token, device.CreateSampler{Info: info})
	return token
}

// BundleProgram waits for the program and checks that param provides
// exactly the variables it declares. Errors are *shade.ParameterLinkError.
func (r *Renderer) BundleProgram(prog resource.ProgramHandle, param shade.ShaderParam) (*shade.Bundle, error) {
	meta, err := r.dispatcher.Program(prog)
	if err != nil {
		return nil, &shade.ParameterLinkError{Kind: shade.LinkBadProgram, Err: shade.ErrBadProgram}
	}
	sink := shade.NewMetaSink(meta)
	link, err := param.CreateLink(sink)
	if err != nil {
		return nil, &shade.ParameterLinkError{Kind: shade.LinkUnusedParameter, Err: err}
	}
	if err := sink.Complete(); err != nil {
		return nil, &shade.ParameterLinkError{Kind: shade.LinkMissingParameter, Err: err}
	}
	return shade.NewBundle(prog, param, link), nil
}

// UpdateBuffer replaces the contents of a buffer.
func (r *Renderer) UpdateBuffer(handle resource.BufferHandle, data device.Blob) error {
	buf, err := r.dispatcher.Buffer(handle)
	if err != nil {
		return err
	}
	r.cast(device.UpdateBuffer{Buffer: buf, Data: data})
	return nil
}

// UpdateTexture uploads data into the region of a texture info describes.
func (r *Renderer) UpdateTexture(handle resource.TextureHandle, info device.ImageInfo, data device.Blob) error {
	tex, err := r.dispatcher.Texture(handle)
	if err != nil {
		return err
	}
	r.cast(device.UpdateTexture{Texture: tex, Info: info, Data: data})
	return nil
}

// TexturePlane waits for a texture and returns a plane rendering into the
// given mip level of it.
func (r *Renderer) TexturePlane(handle resource.TextureHandle, level uint8) (device.Plane, error) {
	tex, err := r.dispatcher.Texture(handle)
	if err != nil {
		return device.Plane{}, err
	}
	return device.TexturePlane(tex, level), nil
}

func (r *Renderer) prebindMesh(m *mesh.Mesh, slice mesh.Slice) error {
	for _, at := range m.Attributes {
		if _, err := r.dispatcher.Buffer(at.Buffer); err != nil {
			return &MeshError{Kind: AttributeBuffer, Attribute: at.Name, Err: err}
		}
	}
	if s, ok := slice.(mesh.IndexSlice); ok {
		if _, err := r.dispatcher.Buffer(s.Buffer); err != nil {
			return &MeshError{Kind: AttributeBuffer, Err: err}
		}
	}
	return nil
}

func (r *Renderer) prebindBundle(bundle *shade.Bundle) {
	d := r.dispatcher
	cache := d.cache
	bundle.Bind(shade.BinderFuncs{
		Block: func(_ shade.VarBlock, buf resource.BufferHandle) {
			d.Demand(func(*resource.Cache) bool {
				return !cache.Buffers.Get(buf).IsPending()
			})
		},
		Texture: func(_ shade.VarTexture, tp shade.TextureParam) {
			d.Demand(func(*resource.Cache) bool {
				return !cache.Textures.Get(tp.Texture).IsPending()
			})
			if tp.Sampler != nil {
				sam := *tp.Sampler
				d.Demand(func(*resource.Cache) bool {
					return !cache.Samplers.Get(sam).IsPending()
				})
			}
		},
	})
}

func (r *Renderer) bindFrame(frame target.Frame) error {
	if frame.IsDefault() {
		// the default target belongs to the window system and may have
		// changed, the common frame buffer keeps its attachments
		r.cast(device.BindFrameBuffer{FrameBuffer: r.defaultFrameBuffer})
		return nil
	}
	fbo, err := r.dispatcher.CommonFrameBuffer()
	if err != nil {
		return err
	}
	r.cast(device.BindFrameBuffer{FrameBuffer: fbo})
	for i := range frame.Colors {
		if r.frame.Colors[i] != frame.Colors[i] {
			r.cast(device.BindTarget{Target: device.ColorTarget(uint8(i)), Plane: frame.Colors[i]})
		}
	}
	if r.frame.Depth != frame.Depth {
		r.cast(device.BindTarget{Target: device.DepthTarget, Plane: frame.Depth})
	}
	if r.frame.Stencil != frame.Stencil {
		r.cast(device.BindTarget{Target: device.StencilTarget, Plane: frame.Stencil})
	}
	r.frame = frame
	return nil
}

func (r *Renderer) bindShaderBundle(meta device.ProgramMeta, bundle *shade.Bundle) error {
	cache := r.dispatcher.cache
	r.cast(device.BindProgram{Program: meta.Name})

	var (
		blockSlot   device.UniformBufferSlot
		textureSlot device.TextureSlot
		blockFail   *shade.VarBlock
		textureFail *shade.VarTexture
	)
	bundle.Bind(shade.BinderFuncs{
		Uniform: func(uv shade.VarUniform, value device.UniformValue) {
			r.cast(device.BindUniform{Location: meta.Uniforms[uv].Location, Value: value})
		},
		Block: func(bv shade.VarBlock, handle resource.BufferHandle) {
			buf, ok := cache.Buffers.Get(handle).Value()
			if !ok {
				if blockFail == nil {
					blockFail = &bv
				}
				return
			}
			r.cast(device.BindUniformBlock{
				Program: meta.Name,
				Slot:    blockSlot,
				Index:   device.UniformBlockIndex(bv),
				Buffer:  buf,
			})
			blockSlot++
		},
		Texture: func(tv shade.VarTexture, tp shade.TextureParam) {
			tex, ok := cache.Textures.Get(tp.Texture).Value()
			var sampler *device.Sampler
			if ok && tp.Sampler != nil {
				var sam device.Sampler
				sam, ok = cache.Samplers.Get(*tp.Sampler).Value()
				sampler = &sam
			}
			if !ok {
				if textureFail == nil {
					textureFail = &tv
				}
				return
			}
			r.cast(device.BindUniform{
				Location: meta.Textures[tv].Location,
				Value:    device.ValueI32(textureSlot),
			})
			r.cast(device.BindTexture{Slot: textureSlot, Texture: tex, Sampler: sampler})
			textureSlot++
		},
	})

	switch {
	case blockFail != nil:
		return &BundleError{Kind: BundleBlock, Block: *blockFail}
	case textureFail != nil:
		return &BundleError{Kind: BundleTexture, Texture: *textureFail}
	}
	return nil
}

func (r *Renderer) bindMesh(m *mesh.Mesh, meta device.ProgramMeta) error {
	cache := r.dispatcher.cache
	for _, sat := range meta.Attributes {
		vat, ok := m.Attribute(sat.Name)
		if !ok {
			return &MeshError{Kind: AttributeMissing, Attribute: sat.Name}
		}
		if err := vat.ElemType.IsCompatible(sat.BaseType); err != nil {
			return &MeshError{Kind: AttributeType, Attribute: sat.Name, Err: err}
		}
		buf, _ := cache.Buffers.Get(vat.Buffer).Value()
		r.cast(device.BindAttribute{
			Slot:   sat.Location,
			Buffer: buf,
			Count:  vat.ElemCount,
			Type:   vat.ElemType,
			Stride: vat.Stride,
			Offset: vat.Offset,
		})
	}
	return nil
}
