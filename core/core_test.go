package core_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/utility/kar"
	"github.com/sirupsen/logrus"
)

func TestShouldClose(t *testing.T) {
	sc := core.NewShouldClose()
	if sc.Check() {
		t.Fatal("new flag is raised")
	}
	done := make(chan struct{})
	go func() {
		sc.Close()
		close(done)
	}()
	<-done
	if !sc.Check() {
		t.Fatal("flag not raised")
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Renderer.ScreenWidth != core.DefaultConfiguration.Renderer.ScreenWidth ||
		cfg.Device.CompileWorkers != core.DefaultConfiguration.Device.CompileWorkers {
		t.Errorf("unexpected configuration %+v", cfg)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv(core.EnvFramesPerSecond, "30")
	t.Setenv(core.EnvScreenWidth, "1024")
	t.Setenv(core.EnvDefaultFrameBuffer, "7")
	t.Setenv(core.EnvLogLevel, "debug")
	t.Setenv(core.EnvShaderArchive, "shaders.kar")

	cfg, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Time.FramesPerSecond != 30 {
		t.Errorf("fps is %d", cfg.Time.FramesPerSecond)
	}
	if cfg.Renderer.ScreenWidth != 1024 || cfg.Renderer.ScreenHeight != core.DefaultConfiguration.Renderer.ScreenHeight {
		t.Errorf("unexpected screen %dx%d", cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	}
	if cfg.Renderer.DefaultFrameBuffer != device.FrameBuffer(7) {
		t.Errorf("default framebuffer is %d", cfg.Renderer.DefaultFrameBuffer)
	}
	if cfg.Renderer.LogLevel != logrus.DebugLevel {
		t.Errorf("log level is %s", cfg.Renderer.LogLevel)
	}
	if cfg.Renderer.ShaderArchive != "shaders.kar" {
		t.Errorf("shader archive is %q", cfg.Renderer.ShaderArchive)
	}
	if l := cfg.Renderer.Logger(); l.GetLevel() != logrus.DebugLevel {
		t.Errorf("logger level is %s", l.GetLevel())
	}
}

func TestLoadConfigurationDotenv(t *testing.T) {
	const key = core.EnvQueueSize
	if _, ok := os.LookupEnv(key); ok {
		t.Skipf("%s is set in the environment", key)
	}
	t.Cleanup(func() { os.Unsetenv(key) })

	file := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(file, []byte(key+"=128\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := core.LoadConfiguration(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Device.QueueSize != 128 {
		t.Errorf("queue size is %d", cfg.Device.QueueSize)
	}
}

func TestLoadConfigurationBadValue(t *testing.T) {
	t.Setenv(core.EnvCompileWorkers, "many")
	_, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "missing.env"))
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Variable != core.EnvCompileWorkers {
		t.Fatalf("expected a config error, got %v", err)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("expected a syntax error, got %v", err)
	}
}

func TestTime(t *testing.T) {
	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 1000, EventPollDelay: 5})
	defer tm.Stop()
	if tm.Fps() != 1000 {
		t.Errorf("fps is %d", tm.Fps())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !tm.NextFrame(ctx) {
		t.Fatal("no frame tick")
	}

	slow := core.NewTime(core.TimeConfiguration{FramesPerSecond: 1})
	defer slow.Stop()
	done, stop := context.WithCancel(context.Background())
	stop()
	if slow.NextFrame(done) {
		t.Fatal("frame ticked after cancel")
	}
}

const (
	vert = "@vertex fn main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }"
	frag = "@fragment fn main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }"
)

func TestLoadShaderDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"basic.vert.wgsl":      vert,
		"basic.frag.wgsl":      frag,
		"sub/flat.vert.wgsl":   vert,
		"sub/flat.frag.wgsl":   frag,
		"README.md":            "not a shader",
		"basic.vert.wgsl.orig": "backup",
		"three.dots.vert.wgsl": "skipped",
		"basic.compute.wgsl":   "unknown stage",
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	sets, err := core.LoadShaderDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 || sets[0].Name != "basic" || sets[1].Name != "flat" {
		t.Fatalf("unexpected sets %+v", sets)
	}
	if sets[0].Vertex != vert || sets[0].Fragment != frag {
		t.Errorf("sources swapped %+v", sets[0])
	}
	if _, ok := core.FindShaderSet(sets, "flat"); !ok {
		t.Error("flat not found")
	}
}

func TestLoadShaderDirectoryIncomplete(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lonely.vert.wgsl"), []byte(vert), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := core.LoadShaderDirectory(dir); !errors.Is(err, core.ErrIncompleteShaderSet) {
		t.Fatalf("expected ErrIncompleteShaderSet, got %v", err)
	}
}

func TestLoadShaders(t *testing.T) {
	builder, err := kar.NewBuilder(kar.Header{Author: "test", Version: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer builder.Close()
	if err := builder.Add("shaders/basic.vert.wgsl", strings.NewReader(vert)); err != nil {
		t.Fatal(err)
	}
	if err := builder.Add("shaders/basic.frag.wgsl", strings.NewReader(frag)); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := builder.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(t.TempDir(), "shaders.kar")
	if err := os.WriteFile(archive, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	sets, err := core.LoadShaders(core.RendererConfiguration{ShaderArchive: archive})
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 1 || sets[0].Name != "basic" || sets[0].Vertex != vert || sets[0].Fragment != frag {
		t.Fatalf("unexpected sets %+v", sets)
	}
}
