package resource

import (
	"fmt"

	"github.com/devblok/korender/device"
)

// DeviceErrorKind classifies a failed creation request.
type DeviceErrorKind int

// Device error kinds
const (
	ErrNewBuffer DeviceErrorKind = iota
	ErrNewArrayBuffer
	ErrNewShader
	ErrNewProgram
	ErrNewFrameBuffer
	ErrNewTexture
	ErrNewSampler
)

var deviceErrorNames = [...]string{
	ErrNewBuffer:      "new buffer",
	ErrNewArrayBuffer: "new array buffer",
	ErrNewShader:      "new shader",
	ErrNewProgram:     "new program",
	ErrNewFrameBuffer: "new frame buffer",
	ErrNewTexture:     "new texture",
	ErrNewSampler:     "new sampler",
}

func (k DeviceErrorKind) String() string {
	if int(k) < len(deviceErrorNames) {
		return deviceErrorNames[k]
	}
	return "unknown"
}

// DeviceError is an asynchronous failure reported by the device for a
// creation request. Any attempt to use the token afterwards fails.
type DeviceError struct {
	Kind  DeviceErrorKind
	Token device.Token
	Err   error
	// Shader holds compiler output for ErrNewShader.
	Shader *device.CreateShaderError
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device: %s (token %d): %s", e.Kind, e.Token, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ProtocolError means the device and the renderer disagree about the
// state of a token. It is never returned, only panicked with.
type ProtocolError struct {
	Kind   Kind
	Token  device.Token
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("resource: protocol violation on %s token %d: %s", e.Kind, e.Token, e.Reason)
}
