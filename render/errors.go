package render

import (
	"errors"
	"fmt"

	"github.com/devblok/korender/device"
	"github.com/devblok/korender/render/resource"
	"github.com/devblok/korender/render/shade"
)

var (
	// ErrProgramNotReady means a draw was attempted with a program the
	// device has not answered for yet. Bundle the program first.
	ErrProgramNotReady = errors.New("render: program is not loaded yet")

	// ErrDeviceDisconnected is panicked with when the reply channel is
	// closed while the renderer waits on it.
	ErrDeviceDisconnected = errors.New("render: device reply channel closed")
)

// DeviceError is an asynchronous error queued by the dispatcher.
type DeviceError = resource.DeviceError

// ResolveError is returned when a resource the renderer needed failed to
// be created on the device.
type ResolveError struct {
	Kind  resource.Kind
	Token device.Token
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("render: %s %d could not be resolved: %s", e.Kind, e.Token, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// BundleErrorKind tells which binding of a bundle failed.
type BundleErrorKind int

// Bundle failures
const (
	BundleBlock BundleErrorKind = iota
	BundleTexture
)

// BundleError is an invalid uniform block or texture found while binding
// a shader bundle.
type BundleError struct {
	Kind    BundleErrorKind
	Block   shade.VarBlock
	Texture shade.VarTexture
}

func (e *BundleError) Error() string {
	if e.Kind == BundleBlock {
		return fmt.Sprintf("bundle: uniform block %d is not loaded", e.Block)
	}
	return fmt.Sprintf("bundle: texture %d is not loaded", e.Texture)
}

// MeshErrorKind classifies a MeshError.
type MeshErrorKind int

// Mesh failures
const (
	AttributeMissing MeshErrorKind = iota
	AttributeType
	AttributeBuffer
)

// MeshError is a mismatch between a mesh and the program drawing it.
type MeshError struct {
	Kind      MeshErrorKind
	Attribute string
	Err       error
}

func (e *MeshError) Error() string {
	switch e.Kind {
	case AttributeMissing:
		return fmt.Sprintf("mesh: attribute %q is missing", e.Attribute)
	case AttributeType:
		return fmt.Sprintf("mesh: attribute %q: %s", e.Attribute, e.Err)
	}
	if e.Attribute == "" {
		return fmt.Sprintf("mesh: index buffer: %s", e.Err)
	}
	return fmt.Sprintf("mesh: buffer of attribute %q: %s", e.Attribute, e.Err)
}

func (e *MeshError) Unwrap() error {
	return e.Err
}

// DrawErrorKind classifies a DrawError.
type DrawErrorKind int

// Draw failures
const (
	DrawProgram DrawErrorKind = iota
	DrawBundle
	DrawMesh
	DrawResource
)

// DrawError is returned by Renderer.Draw. Commands cast before the failing
// step have already reached the device.
type DrawError struct {
	Kind DrawErrorKind
	Err  error
}

func (e *DrawError) Error() string {
	return "render: draw: " + e.Err.Error()
}

func (e *DrawError) Unwrap() error {
	return e.Err
}
