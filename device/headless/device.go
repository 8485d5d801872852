// Package headless is a device worker that keeps no GPU state. It speaks
// the full request protocol, compiles and reflects WGSL shaders, and
// counts what it was asked to do. It drives the renderer in tests and in
// the demo when no GPU backend is available.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/devblok/korender/device"
	"github.com/sirupsen/logrus"
)

var (
	// ErrZeroExtent is returned for textures without texels.
	ErrZeroExtent = errors.New("headless: texture has a zero extent")

	// ErrBadLevels is returned for samplers whose minimum level of detail
	// exceeds the maximum.
	ErrBadLevels = errors.New("headless: sampler lod range is empty")
)

// Configuration of a headless device.
type Configuration struct {
	// CompileWorkers is the number of goroutines compiling shaders.
	CompileWorkers int
	// QueueSize is the number of compile jobs that can wait for a worker.
	QueueSize int
	Logger    *logrus.Entry
}

// Stats counts the work a device has done.
type Stats struct {
	Calls    int
	Casts    int
	Draws    int
	Clears   int
	Frames   int
	Warnings int
}

// Device serves renderer requests without a GPU.
type Device struct {
	requests <-chan device.Request
	replies  chan<- device.Reply
	acks     chan<- device.Ack
	log      *logrus.Entry
	pool     worker.DynamicWorkerPool
	compiles sync.WaitGroup
	taskID   int
	outbox   outbox

	mu       sync.Mutex
	stats    Stats
	next     handles
	buffers  map[device.Buffer]int
	textures map[device.Texture]device.TextureInfo
	samplers map[device.Sampler]device.SamplerInfo
	shaders  map[device.Shader]*shaderModule
	programs map[device.Program]device.ProgramMeta
}

type handles struct {
	arrayBuffer device.ArrayBuffer
	frameBuffer device.FrameBuffer
	buffer      device.Buffer
	shader      device.Shader
	program     device.Program
	texture     device.Texture
	sampler     device.Sampler
}

// New creates a device. Run must be called to serve requests.
func New(cfg Configuration, requests <-chan device.Request, replies chan<- device.Reply, acks chan<- device.Ack) *Device {
	if cfg.CompileWorkers <= 0 {
		cfg.CompileWorkers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Device{
		requests: requests,
		replies:  replies,
		acks:     acks,
		log:      log.WithField("component", "headless"),
		pool:     worker.NewDynamicWorkerPool(cfg.CompileWorkers, cfg.QueueSize, time.Second),
		outbox:   outbox{ready: make(chan struct{}, 1)},
		buffers:  make(map[device.Buffer]int),
		textures: make(map[device.Texture]device.TextureInfo),
		samplers: make(map[device.Sampler]device.SamplerInfo),
		shaders:  make(map[device.Shader]*shaderModule),
		programs: make(map[device.Program]device.ProgramMeta),
	}
}

// Run serves requests until the request channel is closed or ctx is done.
// Replies are queued without bound and delivered by a separate goroutine,
// so the request loop never waits for the renderer to read them. On return
// compiles still in flight and undelivered replies are abandoned, then
// replies and acks are closed.
func (d *Device) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		d.outbox.deliver(ctx, d.replies)
	}()
	defer func() {
		cancel()
		d.compiles.Wait()
		d.pool.Stop()
		<-sent
		close(d.replies)
		close(d.acks)
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-d.requests:
			if !ok {
				return nil
			}
			d.serve(ctx, req)
		}
	}
}

// Stats returns a snapshot of the counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Device) serve(ctx context.Context, req device.Request) {
	switch r := req.(type) {
	case device.Call:
		d.mu.Lock()
		d.stats.Calls++
		d.mu.Unlock()
		d.call(r.Token, r.Command)
	case device.Cast:
		d.cast(r.Command)
	case device.SwapBuffers:
		d.mu.Lock()
		d.stats.Frames++
		d.mu.Unlock()
		select {
		case d.acks <- device.Ack{}:
		case <-ctx.Done():
		}
	default:
		d.warnf("unknown request %T", req)
	}
}

func (d *Device) reply(token device.Token, resp device.Response) {
	d.outbox.push(device.Reply{Token: token, Response: resp})
}

// outbox is an unbounded reply queue.
type outbox struct {
	mu      sync.Mutex
	pending []device.Reply
	ready   chan struct{}
}

func (o *outbox) push(r device.Reply) {
	o.mu.Lock()
	o.pending = append(o.pending, r)
	o.mu.Unlock()
	select {
	case o.ready <- struct{}{}:
	default:
	}
}

// deliver sends queued replies in order until ctx is done.
func (o *outbox) deliver(ctx context.Context, out chan<- device.Reply) {
	for {
		o.mu.Lock()
		batch := o.pending
		o.pending = nil
		o.mu.Unlock()

		for _, r := range batch {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-o.ready:
		case <-ctx.Done():
			return
		}
	}
}

func (d *Device) warnf(format string, args ...interface{}) {
	d.mu.Lock()
	d.stats.Warnings++
	d.mu.Unlock()
	d.log.Warnf(format, args...)
}

func (d *Device) call(token device.Token, cmd device.CallRequest) {
	if c, ok := cmd.(device.CreateShader); ok {
		d.mu.Lock()
		d.next.shader++
		handle := d.next.shader
		d.mu.Unlock()
		d.submitCompile(token, handle, c.Stage, c.Source)
		return
	}
	resp := d.create(cmd)
	if resp == nil {
		d.warnf("unknown call %T", cmd)
		return
	}
	d.reply(token, resp)
}

// create allocates the object a call asks for, or returns nil for calls
// it does not know.
func (d *Device) create(cmd device.CallRequest) device.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch c := cmd.(type) {
	case device.CreateArrayBuffer:
		d.next.arrayBuffer++
		return device.ArrayBufferReply{Handle: d.next.arrayBuffer}
	case device.CreateFrameBuffer:
		d.next.frameBuffer++
		return device.FrameBufferReply{Handle: d.next.frameBuffer}
	case device.CreateBuffer:
		d.next.buffer++
		size := 0
		if c.Data != nil {
			size = len(c.Data.Bytes())
		}
		d.buffers[d.next.buffer] = size
		return device.BufferReply{Handle: d.next.buffer}
	case device.CreateTexture:
		size := c.Info.Size
		if size.Width == 0 || size.Height == 0 || size.DepthOrArrayLayers == 0 {
			return device.TextureReply{Err: ErrZeroExtent}
		}
		d.next.texture++
		d.textures[d.next.texture] = c.Info
		return device.TextureReply{Handle: d.next.texture}
	case device.CreateSampler:
		if c.Info.LodMin > c.Info.LodMax {
			return device.SamplerReply{Err: ErrBadLevels}
		}
		d.next.sampler++
		d.samplers[d.next.sampler] = c.Info
		return device.SamplerReply{Handle: d.next.sampler}
	case device.CreateProgram:
		var modules []*shaderModule
		for _, h := range c.Shaders {
			m, ok := d.shaders[h]
			if !ok {
				return device.ProgramReply{Err: fmt.Errorf("%w %d", ErrUnknownShader, h)}
			}
			modules = append(modules, m)
		}
		meta, err := link(d.next.program+1, modules)
		if err != nil {
			return device.ProgramReply{Err: err}
		}
		d.next.program++
		d.programs[meta.Name] = meta
		return device.ProgramReply{Meta: meta}
	}
	return nil
}

// submitCompile compiles a shader on the worker pool. Replies to later
// requests may overtake its reply.
func (d *Device) submitCompile(token device.Token, handle device.Shader, stage device.Stage, src device.Source) {
	d.compiles.Add(1)
	d.taskID++
	d.pool.SubmitTask(worker.Task{
		ID: d.taskID,
		Do: func() (any, error) {
			defer d.compiles.Done()
			m, err := compileSafe(stage, src)
			if err != nil {
				d.log.WithField("stage", stage).Debugf("shader %d failed: %s", handle, err.Log)
				d.reply(token, device.ShaderReply{Err: err})
				return nil, err
			}
			d.mu.Lock()
			d.shaders[handle] = m
			d.mu.Unlock()
			d.reply(token, device.ShaderReply{Handle: handle})
			return handle, nil
		},
	})
}

func compileSafe(stage device.Stage, src device.Source) (m *shaderModule, err *device.CreateShaderError) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, &device.CreateShaderError{
				Kind: device.ShaderCompilationFailed,
				Log:  fmt.Sprint(r),
			}
		}
	}()
	return compile(stage, src)
}

func (d *Device) cast(cmd device.CastRequest) {
	d.mu.Lock()
	d.stats.Casts++
	var warning string
	switch c := cmd.(type) {
	case device.Draw, device.DrawIndexed:
		d.stats.Draws++
	case device.Clear:
		d.stats.Clears++
	case device.BindProgram:
		if _, ok := d.programs[c.Program]; !ok {
			warning = fmt.Sprintf("bind of unknown program %d", c.Program)
		}
	case device.BindTexture:
		if _, ok := d.textures[c.Texture]; !ok {
			warning = fmt.Sprintf("bind of unknown texture %d", c.Texture)
		}
	case device.BindIndex:
		if _, ok := d.buffers[c.Buffer]; !ok {
			warning = fmt.Sprintf("bind of unknown index buffer %d", c.Buffer)
		}
	case device.UpdateBuffer:
		if _, ok := d.buffers[c.Buffer]; !ok {
			warning = fmt.Sprintf("update of unknown buffer %d", c.Buffer)
		} else if c.Data != nil {
			d.buffers[c.Buffer] = len(c.Data.Bytes())
		}
	case device.UpdateTexture:
		if _, ok := d.textures[c.Texture]; !ok {
			warning = fmt.Sprintf("update of unknown texture %d", c.Texture)
		}
	}
	d.mu.Unlock()

	if warning != "" {
		d.warnf("%s", warning)
	}
}
