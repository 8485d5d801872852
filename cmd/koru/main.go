package main

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync"

	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/device/headless"
	"github.com/devblok/korender/model"
	"github.com/devblok/korender/render"
	"github.com/devblok/korender/render/rast"
	"github.com/devblok/korender/render/shade"
	"github.com/devblok/korender/render/target"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/packr"
	"github.com/gogpu/gputypes"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// StaticShaders are used when no shader directory or archive is found.
var StaticShaders packr.Box

func init() {
	StaticShaders = packr.NewBox("./shaders")
}

func loadShaders(cfg core.RendererConfiguration, logger *log.Logger) (core.ShaderSet, error) {
	sets, err := core.LoadShaders(cfg)
	if err == nil {
		if set, ok := core.FindShaderSet(sets, "basic"); ok {
			return set, nil
		}
	}
	logger.WithError(err).Info("using embedded shaders")

	vs, err := StaticShaders.FindString("basic.vert.wgsl")
	if err != nil {
		return core.ShaderSet{}, err
	}
	fs, err := StaticShaders.FindString("basic.frag.wgsl")
	if err != nil {
		return core.ShaderSet{}, err
	}
	return core.ShaderSet{Name: "basic", Vertex: device.Source(vs), Fragment: device.Source(fs)}, nil
}

func newWindow(cfg core.RendererConfiguration) *sdl.Window {
	window, err := sdl.CreateWindow("Koru3D",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_SHOWN)
	if err != nil {
		panic(err)
	}
	return window
}

var triangle = []model.Vertex{
	{Pos: glm.Vec3{-0.5, -0.5, 0}, Color: glm.Vec4{1, 0, 0, 1}},
	{Pos: glm.Vec3{0.5, -0.5, 0}, Color: glm.Vec4{0, 1, 0, 1}},
	{Pos: glm.Vec3{0, 0.5, 0}, Color: glm.Vec4{0, 0, 1, 1}},
}

func renderLoop(ctx context.Context, r *render.Renderer, tm *core.Time, set core.ShaderSet, cfg core.RendererConfiguration) error {
	prog, err := r.CreateProgram(set.Vertex, set.Fragment)
	if err != nil {
		return err
	}

	obj := model.NewObject(triangle)
	uniform := model.Uniform{Model: model.Transform(obj), View: glm.Ident4(), Projection: glm.Ident4()}
	globals := r.CreateBuffer(uniform.Blob())

	white := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.White)
	pix, info, region := device.ImageBlob(white)
	tex := r.CreateTexture(info)
	if err := r.UpdateTexture(tex, region, pix); err != nil {
		return err
	}
	sampler := r.CreateSampler(device.NewSamplerInfo())

	params := shade.NewParamSet()
	params.Blocks["globals"] = globals
	params.Textures["t_Color"] = shade.TextureParam{Texture: tex, Sampler: &sampler}
	bundle, err := r.BundleProgram(prog, params)
	if err != nil {
		return err
	}

	m := model.Upload(r, obj)
	frame := target.NewFrame(uint16(cfg.ScreenWidth), uint16(cfg.ScreenHeight))
	state := rast.NewDrawState().WithDepth(gputypes.CompareFunctionAlways, true)
	clearData := device.ClearData{Color: &gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}}

	var angle float32
	for !r.ShouldFinish() {
		if !tm.NextFrame(ctx) {
			return nil
		}
		angle += 0.01
		obj.SetRotation(glm.HomogRotate3DZ(angle))
		uniform.Model = model.Transform(obj)
		if err := r.UpdateBuffer(globals, uniform.Blob()); err != nil {
			return err
		}
		if err := r.Clear(clearData, frame); err != nil {
			return err
		}
		if err := r.Draw(m, nil, frame, bundle, state); err != nil {
			return err
		}
		r.EndFrame()
		r.Errors() // logged by the dispatcher, drop them
	}
	return nil
}

func main() {
	cfg, err := core.LoadConfiguration()
	if err != nil {
		log.Fatal(err)
	}
	logger := cfg.Renderer.Logger()

	set, err := loadShaders(cfg.Renderer, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		panic(err)
	}
	defer sdl.Quit()

	window := newWindow(cfg.Renderer)
	defer window.Destroy()

	requests := make(chan device.Request, 1024)
	replies := make(chan device.Reply, 1024)
	acks := make(chan device.Ack, 1)

	dev := headless.New(headless.Configuration{
		CompileWorkers: cfg.Device.CompileWorkers,
		QueueSize:      cfg.Device.QueueSize,
		Logger:         log.NewEntry(logger),
	}, requests, replies, acks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dev.Run(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("device stopped")
		}
	}()

	shouldClose := core.NewShouldClose()
	tm := core.NewTime(cfg.Time)
	defer tm.Stop()

	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		defer close(requests)
		r := render.New(requests, replies, acks, shouldClose, render.Configuration{
			DefaultFrameBuffer: cfg.Renderer.DefaultFrameBuffer,
			Logger:             log.NewEntry(logger),
		})
		if err := renderLoop(ctx, r, tm, set, cfg.Renderer); err != nil {
			logger.WithError(err).Error("render loop stopped")
		}
	}()

EventLoop:
	for !shouldClose.Check() {
		select {
		case <-renderDone:
			break EventLoop
		case <-tm.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						shouldClose.Close()
					}
				case *sdl.QuitEvent:
					shouldClose.Close()
				}
			}
		}
	}

	shouldClose.Close()
	<-renderDone
	wg.Wait()

	stats := dev.Stats()
	logger.WithFields(log.Fields{
		"frames":   stats.Frames,
		"draws":    stats.Draws,
		"warnings": stats.Warnings,
	}).Info("event loop exited")
}
