package core

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/devblok/korender/device"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
	Device   DeviceConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the window event polling interval in milliseconds
	EventPollDelay int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	ScreenWidth  uint32
	ScreenHeight uint32

	DefaultFrameBuffer device.FrameBuffer
	LogLevel           logrus.Level

	// ShaderDirectory is searched for name.vert.wgsl / name.frag.wgsl pairs.
	ShaderDirectory string
	// ShaderArchive, if set, is a kar archive used instead of ShaderDirectory.
	ShaderArchive string
}

// DeviceConfiguration is used to configure the device worker
type DeviceConfiguration struct {
	CompileWorkers int
	QueueSize      int
}

// DefaultConfiguration is used for every setting the environment leaves out.
var DefaultConfiguration = Configuration{
	Time: TimeConfiguration{
		FramesPerSecond: 60,
		EventPollDelay:  10,
	},
	Renderer: RendererConfiguration{
		ScreenWidth:     800,
		ScreenHeight:    600,
		LogLevel:        logrus.InfoLevel,
		ShaderDirectory: "shaders",
	},
	Device: DeviceConfiguration{
		CompileWorkers: 2,
		QueueSize:      64,
	},
}

// Environment variables read by LoadConfiguration.
const (
	EnvFramesPerSecond    = "KORU_FPS"
	EnvEventPollDelay     = "KORU_EVENT_POLL_DELAY"
	EnvScreenWidth        = "KORU_SCREEN_WIDTH"
	EnvScreenHeight       = "KORU_SCREEN_HEIGHT"
	EnvDefaultFrameBuffer = "KORU_DEFAULT_FRAMEBUFFER"
	EnvLogLevel           = "KORU_LOG_LEVEL"
	EnvShaderDirectory    = "KORU_SHADER_DIR"
	EnvShaderArchive      = "KORU_SHADER_ARCHIVE"
	EnvCompileWorkers     = "KORU_COMPILE_WORKERS"
	EnvQueueSize          = "KORU_QUEUE_SIZE"
)

// ConfigError reports an environment variable that could not be parsed.
type ConfigError struct {
	Variable string
	Value    string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s=%q: %s", e.Variable, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfiguration loads the given dotenv files (".env" when none are
// given, missing files are skipped), then reads KORU_* variables on top of
// DefaultConfiguration. Variables already set in the process environment win
// over the files.
func LoadConfiguration(files ...string) (Configuration, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Configuration{}, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	envy.Reload()

	cfg := DefaultConfiguration
	var err error
	setInt := func(key string, dst *int) {
		if err != nil {
			return
		}
		raw := envy.Get(key, strconv.Itoa(*dst))
		v, perr := strconv.Atoi(raw)
		if perr != nil {
			err = &ConfigError{Variable: key, Value: raw, Err: perr}
			return
		}
		*dst = v
	}
	setUint := func(key string, bits int, dst func(uint64)) {
		if err != nil {
			return
		}
		raw, ok := lookup(key)
		if !ok {
			return
		}
		v, perr := strconv.ParseUint(raw, 10, bits)
		if perr != nil {
			err = &ConfigError{Variable: key, Value: raw, Err: perr}
			return
		}
		dst(v)
	}

	setInt(EnvFramesPerSecond, &cfg.Time.FramesPerSecond)
	setInt(EnvEventPollDelay, &cfg.Time.EventPollDelay)
	setUint(EnvScreenWidth, 32, func(v uint64) { cfg.Renderer.ScreenWidth = uint32(v) })
	setUint(EnvScreenHeight, 32, func(v uint64) { cfg.Renderer.ScreenHeight = uint32(v) })
	setUint(EnvDefaultFrameBuffer, 32, func(v uint64) { cfg.Renderer.DefaultFrameBuffer = device.FrameBuffer(v) })
	setInt(EnvCompileWorkers, &cfg.Device.CompileWorkers)
	setInt(EnvQueueSize, &cfg.Device.QueueSize)
	if err != nil {
		return Configuration{}, err
	}

	if raw, ok := lookup(EnvLogLevel); ok {
		level, perr := logrus.ParseLevel(raw)
		if perr != nil {
			return Configuration{}, &ConfigError{Variable: EnvLogLevel, Value: raw, Err: perr}
		}
		cfg.Renderer.LogLevel = level
	}
	cfg.Renderer.ShaderDirectory = envy.Get(EnvShaderDirectory, cfg.Renderer.ShaderDirectory)
	cfg.Renderer.ShaderArchive = envy.Get(EnvShaderArchive, cfg.Renderer.ShaderArchive)
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v, err := envy.MustGet(key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Logger creates a logger at the configured level.
func (c RendererConfiguration) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	return logger
}
