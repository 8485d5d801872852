package render

import (
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render/resource"
	"github.com/sirupsen/logrus"
)

// Dispatcher owns the resource cache and the reply channel feeding it.
type Dispatcher struct {
	replies <-chan device.Reply
	errors  []*DeviceError
	cache   *resource.Cache
	log     *logrus.Entry
}

// NewDispatcher creates a dispatcher applying replies to cache.
func NewDispatcher(replies <-chan device.Reply, cache *resource.Cache, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		replies: replies,
		cache:   cache,
		log:     log,
	}
}

// Cache returns the resource cache. It must only be used from the
// goroutine driving the dispatcher.
func (d *Dispatcher) Cache() *resource.Cache {
	return d.cache
}

// Demand processes replies one at a time, in the order they arrive, until
// ready holds. Failed replies are queued as device errors.
func (d *Dispatcher) Demand(ready func(*resource.Cache) bool) {
	for !ready(d.cache) {
		reply, ok := <-d.replies
		if !ok {
			panic(ErrDeviceDisconnected)
		}
		if err := d.cache.Process(reply); err != nil {
			d.log.WithFields(logrus.Fields{
				"kind":  err.Kind,
				"token": err.Token,
			}).Warnf("device error: %s", err.Err)
			d.errors = append(d.errors, err)
			continue
		}
		d.log.WithField("token", reply.Token).Debugf("resolved %T", reply.Response)
	}
}

// Errors returns and clears the queued device errors.
func (d *Dispatcher) Errors() []*DeviceError {
	errs := d.errors
	d.errors = nil
	return errs
}

func resolveValue[T any](d *Dispatcher, kind resource.Kind, table *resource.Table[T], token device.Token) (T, error) {
	d.Demand(func(*resource.Cache) bool {
		return !table.Get(token).IsPending()
	})
	slot := table.Get(token)
	if v, ok := slot.Value(); ok {
		return v, nil
	}
	var zero T
	return zero, &ResolveError{Kind: kind, Token: token, Err: slot.Err()}
}

// Buffer waits for a buffer handle.
func (d *Dispatcher) Buffer(token resource.BufferHandle) (device.Buffer, error) {
	return resolveValue(d, resource.KindBuffer, &d.cache.Buffers, token)
}

// CommonArrayBuffer waits for the array buffer shared by all draws.
func (d *Dispatcher) CommonArrayBuffer() (device.ArrayBuffer, error) {
	return resolveValue(d, resource.KindArrayBuffer, &d.cache.ArrayBuffers, 0)
}

// Shader waits for a shader handle.
func (d *Dispatcher) Shader(token resource.ShaderHandle) (device.Shader, error) {
	return resolveValue(d, resource.KindShader, &d.cache.Shaders, token)
}

// CommonFrameBuffer waits for the frame buffer used for off-screen frames.
func (d *Dispatcher) CommonFrameBuffer() (device.FrameBuffer, error) {
	return resolveValue(d, resource.KindFrameBuffer, &d.cache.FrameBuffers, 0)
}

// Texture waits for a texture handle.
func (d *Dispatcher) Texture(token resource.TextureHandle) (device.Texture, error) {
	return resolveValue(d, resource.KindTexture, &d.cache.Textures, token)
}

// Sampler waits for a sampler handle.
func (d *Dispatcher) Sampler(token resource.SamplerHandle) (device.Sampler, error) {
	return resolveValue(d, resource.KindSampler, &d.cache.Samplers, token)
}

// Program waits for the meta data of a linked program.
func (d *Dispatcher) Program(token resource.ProgramHandle) (device.ProgramMeta, error) {
	return resolveValue(d, resource.KindProgram, &d.cache.Programs, token)
}
